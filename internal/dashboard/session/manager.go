// Package session keeps the browser's workspace id in a signed cookie. The
// workspace id plays the role of a browser's local storage partition: every
// request carrying the same cookie reads and writes the same workspace.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName = "dashboard_session"
	defaultCookiePath = "/"
	defaultLifetime   = 400 * 24 * time.Hour

	// touchInterval limits how often an unchanged session re-issues its
	// cookie to slide the expiry.
	touchInterval = time.Minute
)

// ErrExpired indicates the stored session is past its expiry.
var ErrExpired = errors.New("session expired")

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Flash is a message carried across one redirect.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data represents the full persisted session payload.
type Data struct {
	WorkspaceID string    `json:"workspaceId"`
	CreatedAt   time.Time `json:"createdAt"`
	LastActive  time.Time `json:"lastActive"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
	Flash       *Flash    `json:"flash,omitempty"`
}

// Session holds mutable state for the current request lifecycle.
type Session struct {
	data  Data
	dirty bool
}

// Config controls cookie encoding and lifetime.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// Lifetime is extended on every request, so only unused workspaces
	// expire.
	Lifetime time.Duration
	Now      func() time.Time
	NewID    func() string
}

// Manager decodes and persists sessions via signed (and optionally encrypted) cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
	newID func() string
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}

	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	idFn := cfg.NewID
	if idFn == nil {
		idFn = uuid.NewString
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))

	return &Manager{cfg: cfg, codec: codec, now: nowFn, newID: idFn}, nil
}

// Load retrieves the session from the incoming request or creates a new one
// with a fresh workspace.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.New(), nil
	}
	if strings.TrimSpace(stored.WorkspaceID) == "" {
		return m.New(), nil
	}

	now := m.now().UTC()
	if !stored.ExpiresAt.IsZero() && now.After(stored.ExpiresAt.UTC()) {
		return nil, ErrExpired
	}
	sess := &Session{data: stored}
	sess.Touch(now)
	return sess, nil
}

// Save writes the session back to the response as a cookie, sliding its
// expiry forward.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}

	now := m.now().UTC()
	sess.data.LastActive = now
	sess.data.ExpiresAt = now.Add(m.cfg.Lifetime)

	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
		Expires:  sess.data.ExpiresAt,
		MaxAge:   int(m.cfg.Lifetime.Round(time.Second).Seconds()),
	})
	sess.dirty = false
	return nil
}

// New returns a session bound to a newly generated workspace.
func (m *Manager) New() *Session {
	now := m.now().UTC()
	return &Session{
		data: Data{
			WorkspaceID: m.newID(),
			CreatedAt:   now,
			LastActive:  now,
			ExpiresAt:   now.Add(m.cfg.Lifetime),
		},
		dirty: true,
	}
}

// WorkspaceID returns the workspace this browser is bound to.
func (s *Session) WorkspaceID() string {
	return s.data.WorkspaceID
}

// ExpiresAt returns the current expiry.
func (s *Session) ExpiresAt() time.Time {
	return s.data.ExpiresAt
}

// SetFlash stores a message for the next request.
func (s *Session) SetFlash(kind, message string) {
	s.data.Flash = &Flash{Kind: kind, Message: message}
	s.dirty = true
}

// PopFlash returns and clears the pending message.
func (s *Session) PopFlash() *Flash {
	flash := s.data.Flash
	if flash != nil {
		s.data.Flash = nil
		s.dirty = true
	}
	return flash
}

// Touch records activity at now. The session only becomes dirty once the
// last recorded activity is older than a minute.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.Sub(s.data.LastActive) >= touchInterval {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty reports whether the cookie needs to be written for this request.
func (s *Session) Dirty() bool {
	return s.dirty
}

package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"finitefield.org/artist-dashboard/internal/dashboard/httpserver"
	"finitefield.org/artist-dashboard/internal/dashboard/session"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*serverConfig)

type serverConfig struct {
	http      httpserver.Config
	backend   storage.Backend
	workspace workspace.Options
}

// WithBasePath sets a custom base path for the dashboard routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.http.BasePath = path
	}
}

// WithBackend replaces the in-memory backend.
func WithBackend(backend storage.Backend) ServerOption {
	return func(cfg *serverConfig) {
		cfg.backend = backend
	}
}

// WithQuota sets the per-workspace byte quota.
func WithQuota(bytes int64) ServerOption {
	return func(cfg *serverConfig) {
		cfg.workspace.QuotaBytes = bytes
	}
}

// WithMaxAvatarBytes sets the avatar upload limit.
func WithMaxAvatarBytes(n int) ServerOption {
	return func(cfg *serverConfig) {
		cfg.workspace.MaxAvatarBytes = n
		cfg.http.MaxAvatarBytes = n
	}
}

// WithClock fixes the clock used for the footer year.
func WithClock(now func() time.Time) ServerOption {
	return func(cfg *serverConfig) {
		cfg.http.Now = now
	}
}

// NewServer constructs an httptest server running the dashboard HTTP stack
// over an in-memory backend.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := serverConfig{
		http: httpserver.Config{
			Address:        ":0",
			BasePath:       "/",
			Environment:    "Test",
			CSRFCookieName: "dashboard_csrf",
			CSRFHeaderName: "X-CSRF-Token",
			CSRFFieldName:  "csrf_token",
		},
		workspace: workspace.Options{QuotaBytes: storage.DefaultQuotaBytes},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.backend == nil {
		backend := storage.NewMemoryBackend()
		t.Cleanup(func() { _ = backend.Close() })
		cfg.backend = backend
	}

	sessions, err := session.NewManager(session.Config{
		CookieName: "dashboard_session",
		HashKey:    []byte("0123456789abcdef0123456789abcdef"),
		Lifetime:   time.Hour,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	cfg.http.Sessions = sessions
	cfg.http.Workspaces = workspace.NewManager(cfg.backend, cfg.workspace)

	handler, err := httpserver.NewHandler(cfg.http)
	if err != nil {
		t.Fatalf("http handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

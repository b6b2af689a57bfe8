package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	ids := 0
	mgr, err := NewManager(Config{
		CookieName: "test_session",
		HashKey:    []byte("12345678901234567890123456789012"),
		BlockKey:   []byte("abcdefghijklmnopqrstuv0123456789"),
		Lifetime:   2 * time.Hour,
		Now:        clock.Now,
		NewID: func() string {
			ids++
			return "ws-" + string(rune('0'+ids))
		},
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, clock
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestManager_WorkspaceSurvivesRoundTrip(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.WorkspaceID() != "ws-1" {
		t.Fatalf("unexpected workspace id %q", sess.WorkspaceID())
	}
	if !sess.Dirty() {
		t.Fatalf("new sessions must be written")
	}

	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}

	clock.current = clock.current.Add(90 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	again, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load existing error: %v", err)
	}
	if again.WorkspaceID() != "ws-1" {
		t.Fatalf("expected workspace to persist, got %q", again.WorkspaceID())
	}
}

func TestManager_SlidingExpiry(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess := mgr.New()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")

	clock.current = clock.current.Add(time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	rec = httptest.NewRecorder()
	if err := mgr.Save(rec, loaded); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if want := clock.current.Add(2 * time.Hour); !loaded.ExpiresAt().Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, loaded.ExpiresAt())
	}
	refreshed := findCookie(rec.Result().Cookies(), "test_session")

	clock.current = clock.current.Add(90 * time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(refreshed)
	if _, err := mgr.Load(req); err != nil {
		t.Fatalf("refreshed session should still be valid: %v", err)
	}

	clock.current = clock.current.Add(3 * time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(refreshed)
	if _, err := mgr.Load(req); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "forged"})
	sess, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.WorkspaceID() != "ws-1" {
		t.Fatalf("expected a fresh workspace, got %q", sess.WorkspaceID())
	}
}

func TestManager_Flash(t *testing.T) {
	mgr, _ := newTestManager(t)

	sess := mgr.New()
	sess.SetFlash("success", "Profile saved!")
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(findCookie(rec.Result().Cookies(), "test_session"))
	loaded, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	flash := loaded.PopFlash()
	if flash == nil || flash.Message != "Profile saved!" {
		t.Fatalf("expected flash, got %+v", flash)
	}
	if loaded.PopFlash() != nil {
		t.Fatalf("flash must be consumed once")
	}
}

func TestManager_UnchangedSessionIsNotRewritten(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess := mgr.New()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if sess.Dirty() {
		t.Fatalf("saved session must be clean")
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")

	load := func() *Session {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		loaded, err := mgr.Load(req)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		return loaded
	}

	clock.current = clock.current.Add(30 * time.Second)
	if load().Dirty() {
		t.Fatalf("session touched within a minute must not be rewritten")
	}

	clock.current = clock.current.Add(time.Minute)
	if !load().Dirty() {
		t.Fatalf("session idle for over a minute must slide its expiry")
	}

	flashed := load()
	flashed.SetFlash("success", "saved")
	if !flashed.Dirty() {
		t.Fatalf("flash must mark the session dirty")
	}
}

func TestNewManagerValidatesKeys(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig without hash key, got %v", err)
	}
	if _, err := NewManager(Config{HashKey: []byte("k"), BlockKey: []byte("short")}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad block key, got %v", err)
	}
}

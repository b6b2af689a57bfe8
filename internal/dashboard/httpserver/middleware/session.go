package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "dashboard.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*session.Session, error)
	New() *session.Session
	Save(http.ResponseWriter, *session.Session) error
}

// Session attaches the decoded session to the request context. A changed
// session is written right before the response headers, so handlers may
// set a flash up to their first write.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			sess, err := store.Load(r)
			if errors.Is(err, session.ErrExpired) {
				logger.Info("session expired: starting new workspace")
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.save = func() {
				if !sess.Dirty() {
					return
				}
				if err := store.Save(w, sess); err != nil {
					logger.Error("session save failed", zap.Error(err))
					return
				}
				logger.Debug("session cookie issued", zap.Time("expires_at", sess.ExpiresAt()))
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.commit()
		})
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*session.Session)
	return sess, ok && sess != nil
}

type sessionWriter struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (w *sessionWriter) commit() {
	w.once.Do(w.save)
}

func (w *sessionWriter) WriteHeader(status int) {
	w.commit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

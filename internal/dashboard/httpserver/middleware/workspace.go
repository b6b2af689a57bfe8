package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

type workspaceContextKey struct{}

// WorkspaceOpener binds the dashboard components to a workspace id.
type WorkspaceOpener interface {
	Open(id string) (*workspace.Workspace, error)
}

// Workspace opens the workspace named by the session and tags the request
// logger with it. It must run after Session.
func Workspace(opener WorkspaceOpener) func(http.Handler) http.Handler {
	if opener == nil {
		panic("workspace opener is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			ws, err := opener.Open(sess.WorkspaceID())
			if err != nil {
				observability.FromContext(r.Context()).Error("open workspace failed", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			logger := observability.FromContext(r.Context()).With(zap.String("workspace", ws.ID))
			ctx := observability.WithLogger(r.Context(), logger)
			ctx = context.WithValue(ctx, workspaceContextKey{}, ws)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WorkspaceFromContext returns the workspace opened for this request.
func WorkspaceFromContext(ctx context.Context) (*workspace.Workspace, bool) {
	if ctx == nil {
		return nil, false
	}
	ws, ok := ctx.Value(workspaceContextKey{}).(*workspace.Workspace)
	return ws, ok && ws != nil
}

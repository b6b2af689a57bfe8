package ui

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "finitefield.org/artist-dashboard/internal/dashboard/httpserver/middleware"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/templates/helpers"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

// WarningEvent is sent in HX-Trigger when a change could not be persisted.
const WarningEvent = "dashboard:warning"

const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

// Dependencies collects settings required by the UI handlers.
type Dependencies struct {
	CSRFHeaderName string
	CSRFFieldName  string
	Now            func() time.Time
}

// Handlers exposes HTTP handlers for dashboard pages and fragments.
type Handlers struct {
	csrfHeader string
	csrfField  string
	now        func() time.Time
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	h := &Handlers{
		csrfHeader: deps.CSRFHeaderName,
		csrfField:  deps.CSRFFieldName,
		now:        deps.Now,
	}
	if h.csrfHeader == "" {
		h.csrfHeader = "X-CSRF-Token"
	}
	if h.csrfField == "" {
		h.csrfField = "csrf_token"
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func (h *Handlers) chrome(r *http.Request) templates.Chrome {
	ctx := r.Context()
	return templates.Chrome{
		BasePath:    custommw.BasePathFromContext(ctx),
		CSRFHeader:  h.csrfHeader,
		CSRFField:   h.csrfField,
		CSRFToken:   custommw.CSRFTokenFromContext(ctx),
		Environment: custommw.EnvironmentFromContext(ctx),
		Year:        h.now().Year(),
	}
}

func (h *Handlers) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, ok := custommw.WorkspaceFromContext(r.Context())
	if !ok {
		http.Error(w, "workspace unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return ws, true
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	if status == 0 {
		status = http.StatusOK
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

// failure turns a storage error into a banner. A full store is a warning
// the page survives; anything else is reported as a failed backend.
func (h *Handlers) failure(w http.ResponseWriter, r *http.Request, err error, what string) (*templates.Flash, int) {
	logger := observability.FromContext(r.Context())
	if errors.Is(err, storage.ErrQuotaExceeded) {
		logger.Warn("storage quota exceeded", zap.String("what", what), zap.Error(err))
		w.Header().Set("HX-Trigger", WarningEvent)
		return &templates.Flash{
			Kind:    flashWarning,
			Message: fmt.Sprintf("Storage is full, so %s could not be saved.", what),
		}, http.StatusOK
	}
	logger.Error("storage write failed", zap.String("what", what), zap.Error(err))
	return &templates.Flash{
		Kind:    flashError,
		Message: fmt.Sprintf("Could not save %s. Please try again.", what),
	}, http.StatusBadGateway
}

// redirectToPanel finishes a plain form post: the flash travels in the
// session and the browser lands on the panel it came from.
func (h *Handlers) redirectToPanel(w http.ResponseWriter, r *http.Request, panel navigation.PanelID, flash *templates.Flash) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && flash != nil {
		sess.SetFlash(flash.Kind, flash.Message)
	}
	http.Redirect(w, r, panelURL(r, panel), http.StatusSeeOther)
}

func (h *Handlers) popFlash(r *http.Request) *templates.Flash {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return nil
	}
	if f := sess.PopFlash(); f != nil {
		return &templates.Flash{Kind: f.Kind, Message: f.Message}
	}
	return nil
}

func isFragment(r *http.Request) bool {
	return custommw.HTMXInfoFromContext(r.Context()).Fragment()
}

func panelURL(r *http.Request, panel navigation.PanelID) string {
	return helpers.URL(custommw.BasePathFromContext(r.Context()), "/panels/"+string(panel))
}

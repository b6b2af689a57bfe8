package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

// Dashboard renders the full document on the last visited panel.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	act, err := ws.Navigation.RestoreLastPanel(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("restore panel failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderActivation(w, r, ws, act, h.popFlash(r), http.StatusOK, false)
}

// Panel activates a panel. htmx navigations receive the panel with the
// title, navigation and flash swapped out of band.
func (h *Handlers) Panel(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id, known := navigation.Parse(chi.URLParam(r, "panel"))
	if !known {
		if !isFragment(r) {
			http.Redirect(w, r, panelURL(r, navigation.Menu), http.StatusSeeOther)
			return
		}
		id = navigation.Menu
		w.Header().Set("HX-Push-Url", panelURL(r, navigation.Menu))
	}
	act, err := ws.Navigation.Activate(r.Context(), id)
	if err != nil {
		observability.FromContext(r.Context()).Error("activate panel failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderActivation(w, r, ws, act, h.popFlash(r), http.StatusOK, isFragment(r))
}

func (h *Handlers) renderActivation(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, act navigation.Activation, flash *templates.Flash, status int, fragment bool) {
	page, err := h.buildPage(r, ws, act)
	if err != nil {
		observability.FromContext(r.Context()).Error("load panel failed", zap.String("panel", string(act.Panel)), zap.Error(err))
		http.Error(w, "could not load this section", http.StatusBadGateway)
		return
	}
	page.Flash = flash
	h.renderPage(w, r, page, status, fragment)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, page templates.Page, status int, fragment bool) {
	if fragment {
		h.render(w, r, status, templates.PanelSwap(page))
		return
	}
	h.render(w, r, status, templates.Index(page))
}

// buildPage loads the view of the active panel only.
func (h *Handlers) buildPage(r *http.Request, ws *workspace.Workspace, act navigation.Activation) (templates.Page, error) {
	ctx := r.Context()
	page := templates.Page{
		Chrome: h.chrome(r),
		Panel:  act.Panel,
		Title:  act.Title,
		Nav:    act.Nav,
	}
	if act.Progress != nil {
		page.Progress = *act.Progress
	} else {
		page.Progress = h.progress(ctx, ws)
	}

	switch act.Panel {
	case navigation.Profile:
		view, err := h.profileView(ctx, ws, false)
		if err != nil {
			return page, err
		}
		page.Profile = &view
	case navigation.Checklist:
		tasks, err := ws.Checklist.All(ctx)
		if err != nil {
			return page, err
		}
		page.Checklist = &templates.ChecklistView{Tasks: tasks, Progress: checklist.Summarize(tasks)}
		page.Progress = page.Checklist.Progress
	case navigation.Portfolio:
		for _, kind := range portfolio.Kinds() {
			view, err := collectionView(ctx, ws, kind)
			if err != nil {
				return page, err
			}
			page.Portfolio = append(page.Portfolio, view)
		}
	case navigation.Booking:
		page.Booking = &templates.BookingView{
			Values:    booking.Request{Platform: booking.Platforms[0]},
			Platforms: booking.Platforms,
		}
	}
	return page, nil
}

// progress feeds the header bar on every page. A read failure shows an
// empty bar rather than failing the page.
func (h *Handlers) progress(ctx context.Context, ws *workspace.Workspace) checklist.Progress {
	p, err := ws.Checklist.Progress(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("checklist progress failed", zap.Error(err))
		return checklist.Progress{}
	}
	return p
}

package ui

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

func collectionView(ctx context.Context, ws *workspace.Workspace, kind portfolio.Kind) (templates.CollectionView, error) {
	c, err := ws.Portfolio.Collection(kind)
	if err != nil {
		return templates.CollectionView{}, err
	}
	return templates.CollectionView{
		Kind:         kind,
		Title:        kind.Title(),
		LinkRequired: kind.LinkRequired(),
		Items:        c.List(ctx),
	}, nil
}

func (h *Handlers) collection(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, *portfolio.Collection, bool) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return nil, nil, false
	}
	kind, err := portfolio.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.NotFound(w, r)
		return nil, nil, false
	}
	c, err := ws.Portfolio.Collection(kind)
	if err != nil {
		http.NotFound(w, r)
		return nil, nil, false
	}
	return ws, c, true
}

// ItemAdd appends an item to a collection. Invalid input is answered with
// 422 and the form keeps what was typed.
func (h *Handlers) ItemAdd(w http.ResponseWriter, r *http.Request) {
	ws, c, ok := h.collection(w, r)
	if !ok {
		return
	}
	fields := portfolio.Fields{Title: r.PostFormValue("title"), Link: r.PostFormValue("link")}

	_, err := c.Add(r.Context(), fields)
	var verr *portfolio.ValidationError
	if errors.As(err, &verr) {
		h.collectionInvalid(w, r, ws, c.Kind(), fields, verr.Message)
		return
	}

	var flash *templates.Flash
	status := http.StatusOK
	if err != nil {
		flash, status = h.failure(w, r, err, "the "+c.Kind().Title()+" entry")
	}
	h.finishCollection(w, r, ws, c.Kind(), flash, status)
}

// ItemRemove deletes an item. Unknown ids are ignored.
func (h *Handlers) ItemRemove(w http.ResponseWriter, r *http.Request) {
	ws, c, ok := h.collection(w, r)
	if !ok {
		return
	}
	var flash *templates.Flash
	status := http.StatusOK
	if _, err := c.Remove(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		flash, status = h.failure(w, r, err, c.Kind().Title())
	}
	h.finishCollection(w, r, ws, c.Kind(), flash, status)
}

func (h *Handlers) finishCollection(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, kind portfolio.Kind, flash *templates.Flash, status int) {
	if !isFragment(r) {
		h.redirectToPanel(w, r, navigation.Portfolio, flash)
		return
	}
	view, err := collectionView(r.Context(), ws, kind)
	if err != nil {
		observability.FromContext(r.Context()).Error("load collection failed", zap.Error(err))
		http.Error(w, "could not load the portfolio", http.StatusBadGateway)
		return
	}
	h.render(w, r, status, templates.Collection(templates.CollectionUpdate{Chrome: h.chrome(r), Collection: view, Flash: flash}))
}

func (h *Handlers) collectionInvalid(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, kind portfolio.Kind, fields portfolio.Fields, message string) {
	ctx := r.Context()
	if isFragment(r) {
		view, err := collectionView(ctx, ws, kind)
		if err != nil {
			observability.FromContext(ctx).Error("load collection failed", zap.Error(err))
			http.Error(w, "could not load the portfolio", http.StatusBadGateway)
			return
		}
		view.Values, view.Error = fields, message
		h.render(w, r, http.StatusUnprocessableEntity, templates.Collection(templates.CollectionUpdate{Chrome: h.chrome(r), Collection: view}))
		return
	}

	act, err := ws.Navigation.Activate(ctx, navigation.Portfolio)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	page, err := h.buildPage(r, ws, act)
	if err != nil {
		observability.FromContext(ctx).Error("load portfolio failed", zap.Error(err))
		http.Error(w, "could not load the portfolio", http.StatusBadGateway)
		return
	}
	for i := range page.Portfolio {
		if page.Portfolio[i].Kind == kind {
			page.Portfolio[i].Values, page.Portfolio[i].Error = fields, message
		}
	}
	h.renderPage(w, r, page, http.StatusUnprocessableEntity, false)
}

package ui

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
)

// BookingSubmit records a consultation request. On success the menu is
// shown with the confirmation.
func (h *Handlers) BookingSubmit(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	req := booking.Request{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Platform: r.PostFormValue("platform"),
		DateTime: r.PostFormValue("datetime"),
		Rate:     r.PostFormValue("rate"),
	}

	rec, err := ws.Booking.Submit(ctx, req)
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		h.bookingForm(w, r, booking.Normalize(req), verr, nil, http.StatusUnprocessableEntity)
		return
	case err != nil && !errors.Is(err, storage.ErrQuotaExceeded):
		flash, status := h.failure(w, r, err, "your booking request")
		h.bookingForm(w, r, booking.Normalize(req), nil, flash, status)
		return
	}

	flash := &templates.Flash{Kind: flashSuccess, Message: rec.Confirmation()}
	if err != nil {
		// The request was accepted but not logged.
		logger.Warn("booking not recorded", zap.Error(err))
		w.Header().Set("HX-Trigger", WarningEvent)
		flash = &templates.Flash{Kind: flashWarning, Message: rec.Confirmation() + " Storage is full, so the request was not kept in your log."}
	}
	logger.Info("booking submitted", zap.String("booking", rec.ID), zap.String("platform", rec.Platform))

	if !isFragment(r) {
		h.redirectToPanel(w, r, navigation.Menu, flash)
		return
	}
	act, err := ws.Navigation.Activate(ctx, navigation.Menu)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("HX-Push-Url", panelURL(r, navigation.Menu))
	h.renderActivation(w, r, ws, act, flash, http.StatusOK, true)
}

func (h *Handlers) bookingForm(w http.ResponseWriter, r *http.Request, values booking.Request, verr *booking.ValidationError, flash *templates.Flash, status int) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	act, err := ws.Navigation.Activate(r.Context(), navigation.Booking)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	page, err := h.buildPage(r, ws, act)
	if err != nil {
		observability.FromContext(r.Context()).Error("load booking failed", zap.Error(err))
		http.Error(w, "could not load the booking form", http.StatusBadGateway)
		return
	}
	view := templates.BookingView{Values: values, Platforms: booking.Platforms}
	if verr != nil {
		view.Errors = make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			view.Errors[f.Field] = f.Message
		}
	}
	page.Booking = &view
	page.Flash = flash
	h.renderPage(w, r, page, status, isFragment(r))
}

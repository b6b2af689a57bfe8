package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/profile"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

func (h *Handlers) profileView(ctx context.Context, ws *workspace.Workspace, editable bool) (templates.ProfileView, error) {
	rec, err := ws.Profile.Load(ctx)
	if err != nil {
		return templates.ProfileView{}, err
	}
	return templates.ProfileView{
		Form:    profile.NewForm(rec, editable),
		Display: profile.NewDisplay(rec),
	}, nil
}

// ProfileEdit switches the profile form to edit mode.
func (h *Handlers) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	h.profileMode(w, r, true)
}

// ProfileView switches the profile form back to read-only mode.
func (h *Handlers) ProfileView(w http.ResponseWriter, r *http.Request) {
	h.profileMode(w, r, false)
}

func (h *Handlers) profileMode(w http.ResponseWriter, r *http.Request, editable bool) {
	if !isFragment(r) {
		http.Redirect(w, r, panelURL(r, navigation.Profile), http.StatusSeeOther)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	view, err := h.profileView(r.Context(), ws, editable)
	if err != nil {
		observability.FromContext(r.Context()).Error("load profile failed", zap.Error(err))
		http.Error(w, "could not load the profile", http.StatusBadGateway)
		return
	}
	h.render(w, r, http.StatusOK, templates.Profile(templates.ProfileUpdate{Chrome: h.chrome(r), View: view}))
}

// ProfileSave writes every profile field and returns to read-only mode.
// A failed write keeps the form open with the submitted values.
func (h *Handlers) ProfileSave(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse the form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	values := make(map[string]string, len(profile.Fields))
	for _, name := range profile.FieldNames() {
		values[name] = r.PostForm.Get(name)
	}

	flash := &templates.Flash{Kind: flashSuccess, Message: "Profile saved."}
	status := http.StatusOK
	editable := false
	if _, err := ws.Profile.Save(ctx, values); err != nil {
		flash, status = h.failure(w, r, err, "your profile")
		editable = true
	}

	if !isFragment(r) {
		h.redirectToPanel(w, r, navigation.Profile, flash)
		return
	}

	view, err := h.profileView(ctx, ws, editable)
	if err != nil {
		observability.FromContext(ctx).Error("load profile failed", zap.Error(err))
		http.Error(w, "could not load the profile", http.StatusBadGateway)
		return
	}
	if editable {
		rec := profile.Record{Values: values, Avatar: view.Form.Avatar}
		view.Form = profile.NewForm(rec, true)
	}
	h.render(w, r, status, templates.Profile(templates.ProfileUpdate{Chrome: h.chrome(r), View: view, Flash: flash}))
}

// AvatarUpload stores a new profile photo. A decoded photo that cannot be
// stored is still shown for the current page.
func (h *Handlers) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	limit := ws.Profile.MaxAvatarBytes()

	data, err := readUpload(r, "avatar", limit)
	var avatar profile.Avatar
	if err == nil {
		avatar, err = ws.Profile.UploadAvatar(ctx, data)
	}

	var flash *templates.Flash
	status := http.StatusOK
	switch {
	case err == nil:
		flash = &templates.Flash{Kind: flashSuccess, Message: "Profile photo updated."}
	case errors.Is(err, errNoUpload):
		flash, status = &templates.Flash{Kind: flashError, Message: "Choose an image to upload."}, http.StatusUnprocessableEntity
	case errors.Is(err, profile.ErrImageTooLarge):
		flash = &templates.Flash{Kind: flashError, Message: fmt.Sprintf("That image is too large. The limit is %d KB.", limit>>10)}
		status = http.StatusUnprocessableEntity
	case errors.Is(err, profile.ErrInvalidImage):
		flash, status = &templates.Flash{Kind: flashError, Message: "That file is not a PNG, JPEG or GIF image."}, http.StatusUnprocessableEntity
	default:
		flash, status = h.failure(w, r, err, "your profile photo")
	}

	if !isFragment(r) {
		h.redirectToPanel(w, r, navigation.Profile, flash)
		return
	}

	shown := avatar.DataURI
	if shown == "" {
		rec, loadErr := ws.Profile.Load(ctx)
		if loadErr != nil {
			observability.FromContext(ctx).Warn("load avatar failed", zap.Error(loadErr))
		}
		shown = rec.Avatar
	}
	h.render(w, r, status, templates.Avatar(templates.AvatarUpdate{Chrome: h.chrome(r), DataURI: shown, Flash: flash}))
}

var errNoUpload = errors.New("ui: no file uploaded")

// readUpload reads the named file part, allowing one byte over limit so
// the store can tell an oversized upload from an exact fit.
func readUpload(r *http.Request, field string, limit int) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request over %d bytes", profile.ErrImageTooLarge, tooLarge.Limit)
		}
		return nil, errNoUpload
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errNoUpload
	}
	return data, nil
}

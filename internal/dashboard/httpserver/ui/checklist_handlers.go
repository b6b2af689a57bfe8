package ui

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/templates"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
)

// TaskAdd appends a custom task. Blank input changes nothing.
func (h *Handlers) TaskAdd(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var flash *templates.Flash
	status := http.StatusOK
	if _, _, err := ws.Checklist.Add(r.Context(), r.PostFormValue("text")); err != nil {
		flash, status = h.failure(w, r, err, "the new task")
	}
	h.finishChecklist(w, r, ws, flash, status)
}

// TaskToggle flips a task, or with mode=set writes the submitted checkbox
// state.
func (h *Handlers) TaskToggle(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "taskID")

	var err error
	if r.PostFormValue("mode") == "set" {
		_, err = ws.Checklist.SetDone(r.Context(), id, r.PostFormValue("done") == "true")
	} else {
		_, err = ws.Checklist.Toggle(r.Context(), id)
	}

	var flash *templates.Flash
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, checklist.ErrUnknownTask):
		flash, status = &templates.Flash{Kind: flashError, Message: "That task no longer exists."}, http.StatusNotFound
	default:
		flash, status = h.failure(w, r, err, "the task")
	}
	h.finishChecklist(w, r, ws, flash, status)
}

// TaskRemove deletes a custom task. Built-in tasks are refused.
func (h *Handlers) TaskRemove(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var flash *templates.Flash
	status := http.StatusOK
	_, err := ws.Checklist.Remove(r.Context(), chi.URLParam(r, "taskID"))
	switch {
	case err == nil:
	case errors.Is(err, checklist.ErrBuiltinTask):
		flash, status = &templates.Flash{Kind: flashError, Message: "Built-in tasks cannot be removed."}, http.StatusUnprocessableEntity
	default:
		flash, status = h.failure(w, r, err, "the checklist")
	}
	h.finishChecklist(w, r, ws, flash, status)
}

// finishChecklist re-renders the persisted list with both progress bars.
func (h *Handlers) finishChecklist(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, flash *templates.Flash, status int) {
	if !isFragment(r) {
		h.redirectToPanel(w, r, navigation.Checklist, flash)
		return
	}
	tasks, err := ws.Checklist.All(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("load checklist failed", zap.Error(err))
		http.Error(w, "could not load the checklist", http.StatusBadGateway)
		return
	}
	progress := checklist.Summarize(tasks)
	h.render(w, r, status, templates.Checklist(templates.ChecklistUpdate{
		Chrome:   h.chrome(r),
		View:     templates.ChecklistView{Tasks: tasks, Progress: progress},
		Flash:    flash,
		Progress: progress,
	}))
}

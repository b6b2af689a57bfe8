// Package workspace wires the dashboard components for one workspace scope.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/navigation"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/profile"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

// ErrNoWorkspace is returned for a blank workspace id.
var ErrNoWorkspace = errors.New("workspace: id is required")

// Workspace is the component set bound to a single scope.
type Workspace struct {
	ID         string
	Storage    *storage.Facade
	Navigation *navigation.Controller
	Profile    *profile.Store
	Checklist  *checklist.Store
	Portfolio  *portfolio.Store
	Booking    *booking.Recorder
}

// Options configure every workspace a Manager opens.
type Options struct {
	QuotaBytes     int64
	MaxAvatarBytes int
}

// Manager opens workspaces over a shared backend.
type Manager struct {
	backend storage.Backend
	opts    Options
}

// NewManager returns a Manager over backend.
func NewManager(backend storage.Backend, opts Options) *Manager {
	return &Manager{backend: backend, opts: opts}
}

// Backend returns the shared storage backend.
func (m *Manager) Backend() storage.Backend {
	return m.backend
}

// Open binds the components to id.
func (m *Manager) Open(id string) (*Workspace, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNoWorkspace
	}
	var facadeOpts []storage.FacadeOption
	if m.opts.QuotaBytes != 0 {
		facadeOpts = append(facadeOpts, storage.WithQuota(m.opts.QuotaBytes))
	}
	facade := storage.NewFacade(m.backend, id, facadeOpts...)
	list := checklist.New(facade)
	return &Workspace{
		ID:         id,
		Storage:    facade,
		Navigation: navigation.NewController(facade, list),
		Profile:    profile.New(facade, profile.WithMaxAvatarBytes(m.opts.MaxAvatarBytes)),
		Checklist:  list,
		Portfolio:  portfolio.New(facade),
		Booking:    booking.NewRecorder(facade),
	}, nil
}

// Reset removes every dashboard key of the workspace and reports how many
// were deleted. Keys outside the dashboard namespace are kept.
func (w *Workspace) Reset(ctx context.Context) (int, error) {
	entries, err := w.Storage.Entries(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !storage.Owned(e.Key) {
			continue
		}
		if err := w.Storage.Remove(ctx, storage.Key(e.Key)); err != nil {
			return removed, fmt.Errorf("workspace: reset %s: %w", w.ID, err)
		}
		removed++
	}
	return removed, nil
}

// Package navigation tracks the single active panel of a workspace and
// persists it so the next visit resumes where the user left off.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

// ErrUnknownPanel is returned when activating a panel that does not exist.
var ErrUnknownPanel = errors.New("navigation: unknown panel")

// ProgressSource recomputes checklist progress when the menu activates.
type ProgressSource interface {
	Progress(ctx context.Context) (checklist.Progress, error)
}

// Activation is the state to render after a panel becomes active.
type Activation struct {
	Panel    PanelID
	Title    string
	Nav      []RenderedItem
	Progress *checklist.Progress
}

// Controller owns the active panel of one workspace.
type Controller struct {
	facade   *storage.Facade
	progress ProgressSource

	mu     sync.Mutex
	active PanelID
}

// NewController returns a controller starting on the menu panel. progress
// may be nil, in which case menu activations carry no progress.
func NewController(facade *storage.Facade, progress ProgressSource) *Controller {
	return &Controller{facade: facade, progress: progress, active: Menu}
}

// Active returns the current panel.
func (c *Controller) Active() PanelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate makes id the active panel and persists it. Failing to persist
// is logged and does not prevent the activation.
func (c *Controller) Activate(ctx context.Context, id PanelID) (Activation, error) {
	id = PanelID(strings.TrimSpace(string(id)))
	if _, ok := Parse(string(id)); !ok {
		return Activation{}, fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}

	c.mu.Lock()
	c.active = id
	c.mu.Unlock()

	logger := observability.FromContext(ctx)
	if err := c.facade.Set(ctx, storage.KeyLastPanel, string(id)); err != nil {
		logger.Warn("persist last panel failed", zap.String("panel", string(id)), zap.Error(err))
	}

	act := Activation{
		Panel: id,
		Title: Heading(id),
		Nav:   Build(id),
	}
	if id == Menu && c.progress != nil {
		p, err := c.progress.Progress(ctx)
		if err != nil {
			logger.Warn("recompute checklist progress failed", zap.Error(err))
		} else {
			act.Progress = &p
		}
	}
	return act, nil
}

// RestoreLastPanel activates the persisted panel, or the menu when nothing
// usable was stored.
func (c *Controller) RestoreLastPanel(ctx context.Context) (Activation, error) {
	return c.Activate(ctx, c.LastPanel(ctx))
}

// LastPanel returns the persisted panel without activating it.
func (c *Controller) LastPanel(ctx context.Context) PanelID {
	raw, ok, err := c.facade.Get(ctx, storage.KeyLastPanel)
	if err != nil {
		observability.FromContext(ctx).Warn("read last panel failed", zap.Error(err))
		return Menu
	}
	if !ok {
		return Menu
	}
	id, known := Parse(strings.TrimSpace(raw))
	if !known {
		return Menu
	}
	return id
}

// Back returns to the menu. There is no history stack.
func (c *Controller) Back(ctx context.Context) (Activation, error) {
	return c.Activate(ctx, Menu)
}

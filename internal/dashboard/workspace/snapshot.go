package workspace

import (
	"context"

	"finitefield.org/artist-dashboard/internal/dashboard/booking"
	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
)

// Snapshot is a decoded view of everything a workspace holds, used by the
// export command.
type Snapshot struct {
	Workspace  string                      `json:"workspace" yaml:"workspace"`
	LastPanel  string                      `json:"lastPanel" yaml:"lastPanel"`
	Profile    map[string]string           `json:"profile" yaml:"profile"`
	HasAvatar  bool                        `json:"hasAvatar" yaml:"hasAvatar"`
	Checklist  []SnapshotTask              `json:"checklist" yaml:"checklist"`
	Progress   checklist.Progress          `json:"progress" yaml:"progress"`
	Portfolio  map[string][]portfolio.Item `json:"portfolio" yaml:"portfolio"`
	Bookings   []booking.Record            `json:"bookings" yaml:"bookings"`
	UsageBytes int64                       `json:"usageBytes" yaml:"usageBytes"`
	QuotaBytes int64                       `json:"quotaBytes" yaml:"quotaBytes"`
}

// SnapshotTask is a checklist row in a Snapshot.
type SnapshotTask struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Done    bool   `json:"done" yaml:"done"`
	Builtin bool   `json:"builtin" yaml:"builtin"`
}

// Snapshot collects the decoded state of the workspace.
func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	rec, err := w.Profile.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := w.Checklist.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	usage, err := w.Storage.Usage(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Workspace:  w.ID,
		LastPanel:  string(w.Navigation.LastPanel(ctx)),
		Profile:    rec.Values,
		HasAvatar:  rec.Avatar != "",
		Progress:   checklist.Summarize(tasks),
		Portfolio:  make(map[string][]portfolio.Item, 3),
		Bookings:   w.Booking.Log(ctx),
		UsageBytes: usage,
		QuotaBytes: w.Storage.Quota(),
	}
	for _, t := range tasks {
		snap.Checklist = append(snap.Checklist, SnapshotTask{ID: t.ID, Label: t.Label, Done: t.Done, Builtin: t.Builtin})
	}
	for _, kind := range portfolio.Kinds() {
		c, err := w.Portfolio.Collection(kind)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Portfolio[string(kind)] = c.List(ctx)
	}
	return snap, nil
}

// Package checklist tracks the release checklist: a fixed set of built-in
// tasks with individually stored flags, followed by user-defined tasks kept
// as one JSON array.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"finitefield.org/artist-dashboard/internal/dashboard/ids"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/textutil"
)

const customIDPrefix = "c_"

var (
	// ErrUnknownTask is returned when an id matches neither a built-in nor a
	// custom task.
	ErrUnknownTask = errors.New("checklist: unknown task")
	// ErrBuiltinTask is returned when removing a built-in task.
	ErrBuiltinTask = errors.New("checklist: built-in tasks cannot be removed")
)

// Builtin is one of the fixed tasks every workspace starts with.
type Builtin struct {
	Key   string
	Label string
}

var builtins = []Builtin{
	{Key: "mix", Label: "Mix & Master complete"},
	{Key: "artwork", Label: "Artwork ready"},
	{Key: "metadata", Label: "Final metadata (title, ISRC/UPC if available)"},
	{Key: "social", Label: "Social profiles claimed & updated"},
	{Key: "marketing", Label: "Marketing"},
	{Key: "presskit", Label: "EPK/press kit ready"},
	{Key: "preSave", Label: "Pre-save / pre-order links created"},
}

// IsBuiltin reports whether id names a built-in task.
func IsBuiltin(id string) bool {
	return slices.ContainsFunc(builtins, func(b Builtin) bool { return b.Key == id })
}

// Task is a checklist row as presented to the user.
type Task struct {
	ID      string
	Label   string
	Done    bool
	Builtin bool
}

// CustomTask is the persisted shape of a user-defined task.
type CustomTask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Progress summarises completion across every task.
type Progress struct {
	Completed int `json:"completed" yaml:"completed"`
	Total     int `json:"total" yaml:"total"`
	Percent   int `json:"percent" yaml:"percent"`
}

var customTasks = storage.NewJSONKey[[]CustomTask](storage.KeyCustomTasks)

// Store reads and mutates the checklist of one workspace.
type Store struct {
	facade *storage.Facade
	newID  ids.Generator
}

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator overrides how custom task ids are produced. The c_ prefix
// is always applied.
func WithIDGenerator(gen ids.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = ids.Prefixed(customIDPrefix, gen)
		}
	}
}

// New returns a Store backed by facade.
func New(facade *storage.Facade, opts ...Option) *Store {
	s := &Store{
		facade: facade,
		newID:  ids.Prefixed(customIDPrefix, ids.New),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// All returns the built-in tasks followed by the custom tasks.
func (s *Store) All(ctx context.Context) ([]Task, error) {
	tasks := make([]Task, 0, len(builtins))
	for _, b := range builtins {
		done, err := s.builtinDone(ctx, b.Key)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, Task{ID: b.Key, Label: b.Label, Done: done, Builtin: true})
	}
	for _, c := range s.custom(ctx) {
		tasks = append(tasks, Task{ID: c.ID, Label: c.Text, Done: c.Done})
	}
	return tasks, nil
}

// Toggle flips the done flag of the task identified by id.
func (s *Store) Toggle(ctx context.Context, id string) (Task, error) {
	return s.update(ctx, id, func(done bool) bool { return !done })
}

// SetDone sets the done flag of the task identified by id.
func (s *Store) SetDone(ctx context.Context, id string, done bool) (Task, error) {
	return s.update(ctx, id, func(bool) bool { return done })
}

func (s *Store) update(ctx context.Context, id string, next func(bool) bool) (Task, error) {
	id = strings.TrimSpace(id)
	for _, b := range builtins {
		if b.Key != id {
			continue
		}
		current, err := s.builtinDone(ctx, b.Key)
		if err != nil {
			return Task{}, err
		}
		done := next(current)
		flag := "0"
		if done {
			flag = "1"
		}
		if err := s.facade.Set(ctx, storage.BuiltinTaskKey(b.Key), flag); err != nil {
			return Task{}, fmt.Errorf("checklist: update %s: %w", b.Key, err)
		}
		return Task{ID: b.Key, Label: b.Label, Done: done, Builtin: true}, nil
	}

	current := s.custom(ctx)
	idx := slices.IndexFunc(current, func(c CustomTask) bool { return c.ID == id })
	if idx < 0 {
		return Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	updated := slices.Clone(current)
	updated[idx].Done = next(updated[idx].Done)
	if err := customTasks.Store(ctx, s.facade, updated); err != nil {
		return Task{}, fmt.Errorf("checklist: update %s: %w", id, err)
	}
	return Task{ID: updated[idx].ID, Label: updated[idx].Text, Done: updated[idx].Done}, nil
}

// Add appends a custom task. Blank text is ignored and reported with
// added=false.
func (s *Store) Add(ctx context.Context, text string) (task Task, added bool, err error) {
	if textutil.IsBlank(text) {
		return Task{}, false, nil
	}
	text = textutil.Clean(text)
	entry := CustomTask{ID: s.newID(), Text: text}
	updated := append(slices.Clone(s.custom(ctx)), entry)
	if err := customTasks.Store(ctx, s.facade, updated); err != nil {
		return Task{}, false, fmt.Errorf("checklist: add: %w", err)
	}
	return Task{ID: entry.ID, Label: entry.Text}, true, nil
}

// Remove deletes the custom task with the given id. Unknown ids are a no-op
// reported with removed=false.
func (s *Store) Remove(ctx context.Context, id string) (removed bool, err error) {
	id = strings.TrimSpace(id)
	if IsBuiltin(id) {
		return false, fmt.Errorf("%w: %q", ErrBuiltinTask, id)
	}
	current := s.custom(ctx)
	updated := slices.DeleteFunc(slices.Clone(current), func(c CustomTask) bool { return c.ID == id })
	if len(updated) == len(current) {
		return false, nil
	}
	if err := customTasks.Store(ctx, s.facade, updated); err != nil {
		return false, fmt.Errorf("checklist: remove %s: %w", id, err)
	}
	return true, nil
}

// Progress recomputes completion across built-in and custom tasks.
func (s *Store) Progress(ctx context.Context) (Progress, error) {
	tasks, err := s.All(ctx)
	if err != nil {
		return Progress{}, err
	}
	return Summarize(tasks), nil
}

// Summarize computes progress over tasks. Percent is 0 when there are none.
func Summarize(tasks []Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}

func (s *Store) builtinDone(ctx context.Context, key string) (bool, error) {
	value, ok, err := s.facade.Get(ctx, storage.BuiltinTaskKey(key))
	if err != nil {
		return false, fmt.Errorf("checklist: read %s: %w", key, err)
	}
	return ok && value == "1", nil
}

func (s *Store) custom(ctx context.Context) []CustomTask {
	return customTasks.Load(ctx, s.facade, nil)
}

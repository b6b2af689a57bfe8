package checklist_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/ids"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

func newStore(t *testing.T) (*checklist.Store, *storage.Facade) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })
	facade := storage.NewFacade(backend, "ws")
	return checklist.New(facade, checklist.WithIDGenerator(ids.Sequence("t"))), facade
}

func TestFreshChecklist(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	tasks, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 7)
	require.Equal(t, "mix", tasks[0].ID)
	require.Equal(t, "Mix & Master complete", tasks[0].Label)
	require.Equal(t, "preSave", tasks[6].ID)
	for _, task := range tasks {
		require.True(t, task.Builtin)
		require.False(t, task.Done)
	}

	progress, err := store.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, checklist.Progress{Completed: 0, Total: 7, Percent: 0}, progress)
}

func TestToggleBuiltinSurvivesReload(t *testing.T) {
	t.Parallel()

	store, facade := newStore(t)
	ctx := context.Background()

	task, err := store.Toggle(ctx, "mix")
	require.NoError(t, err)
	require.True(t, task.Done)

	raw, ok, err := facade.Get(ctx, storage.BuiltinTaskKey("mix"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", raw)

	reloaded := checklist.New(facade)
	tasks, err := reloaded.All(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		require.Equal(t, task.ID == "mix", task.Done, task.ID)
	}

	task, err = reloaded.Toggle(ctx, "mix")
	require.NoError(t, err)
	require.False(t, task.Done)
	raw, _, err = facade.Get(ctx, storage.BuiltinTaskKey("mix"))
	require.NoError(t, err)
	require.Equal(t, "0", raw)
}

func TestSetDoneWritesCheckedState(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	for range 2 {
		task, err := store.SetDone(ctx, "artwork", true)
		require.NoError(t, err)
		require.True(t, task.Done)
	}

	added, ok, err := store.Add(ctx, "Book studio")
	require.NoError(t, err)
	require.True(t, ok)
	task, err := store.SetDone(ctx, added.ID, true)
	require.NoError(t, err)
	require.True(t, task.Done)

	progress, err := store.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, checklist.Progress{Completed: 2, Total: 8, Percent: 25}, progress)
}

func TestAddTrimsAndIgnoresBlank(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	before, err := store.All(ctx)
	require.NoError(t, err)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, added, err := store.Add(ctx, blank)
		require.NoError(t, err)
		require.False(t, added)
	}
	after, err := store.All(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)

	task, added, err := store.Add(ctx, "  Shoot video  ")
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, "c_t1", task.ID)

	tasks, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 8)
	require.Equal(t, checklist.Task{ID: "c_t1", Label: "Shoot video"}, tasks[7])
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	first, _, err := store.Add(ctx, "One")
	require.NoError(t, err)
	second, _, err := store.Add(ctx, "Two")
	require.NoError(t, err)

	removed, err := store.Remove(ctx, "c_missing")
	require.NoError(t, err)
	require.False(t, removed)

	_, err = store.Remove(ctx, "mix")
	require.True(t, errors.Is(err, checklist.ErrBuiltinTask))

	removed, err = store.Remove(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, removed)

	tasks, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 8)
	require.Equal(t, second.ID, tasks[7].ID)
}

func TestToggleUnknown(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	_, err := store.Toggle(context.Background(), "c_nope")
	require.ErrorIs(t, err, checklist.ErrUnknownTask)
}

func TestCorruptCustomTasksTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	store, facade := newStore(t)
	ctx := context.Background()
	require.NoError(t, facade.Set(ctx, storage.KeyCustomTasks, "{broken"))

	tasks, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 7)

	_, added, err := store.Add(ctx, "Recover")
	require.NoError(t, err)
	require.True(t, added)
	tasks, err = store.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 8)
}

func TestProgressInvariantUnderRandomOperations(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for step := 0; step < 200; step++ {
		tasks, err := store.All(ctx)
		require.NoError(t, err)

		switch rng.Intn(3) {
		case 0:
			_, err = store.Toggle(ctx, tasks[rng.Intn(len(tasks))].ID)
		case 1:
			_, _, err = store.Add(ctx, "task")
		case 2:
			victim := tasks[rng.Intn(len(tasks))]
			if !victim.Builtin {
				_, err = store.Remove(ctx, victim.ID)
			}
		}
		require.NoError(t, err)

		p, err := store.Progress(ctx)
		require.NoError(t, err)
		require.LessOrEqual(t, p.Completed, p.Total)
		want := 0
		if p.Total > 0 {
			want = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
		}
		require.Equal(t, want, p.Percent)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	require.Equal(t, checklist.Progress{}, checklist.Summarize(nil))
	require.Equal(t, checklist.Progress{Completed: 1, Total: 3, Percent: 33}, checklist.Summarize([]checklist.Task{{Done: true}, {}, {}}))
	require.Equal(t, checklist.Progress{Completed: 2, Total: 3, Percent: 67}, checklist.Summarize([]checklist.Task{{Done: true}, {Done: true}, {}}))
}

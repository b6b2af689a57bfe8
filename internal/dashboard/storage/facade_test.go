package storage_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sample struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

func newFacade(t *testing.T, opts ...storage.FacadeOption) (*storage.Facade, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })
	return storage.NewFacade(backend, "ws-test", opts...), backend
}

func TestFacadeGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t)

	_, ok, err := facade.Get(ctx, storage.KeyLastPanel)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, facade.Set(ctx, storage.KeyLastPanel, "portfolio"))
	value, ok, err := facade.Get(ctx, storage.KeyLastPanel)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "portfolio", value)

	require.NoError(t, facade.Remove(ctx, storage.KeyLastPanel))
	_, ok, err = facade.Get(ctx, storage.KeyLastPanel)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFacadeScopesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })

	a := storage.NewFacade(backend, "a")
	b := storage.NewFacade(backend, "b")
	require.NoError(t, a.Set(ctx, storage.KeyLastPanel, "profile"))

	_, ok, err := b.Get(ctx, storage.KeyLastPanel)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetJSONFailsSoft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t)

	tests := []struct {
		name  string
		raw   *string
		found bool
	}{
		{name: "absent", raw: nil},
		{name: "empty", raw: ptr("")},
		{name: "malformed", raw: ptr("[{not json")},
		{name: "wrong shape", raw: ptr(`{"id":"x"}`)},
		{name: "valid", raw: ptr(`[{"id":"c_1","text":"Shoot video","done":true}]`), found: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := storage.Key("jp_test_" + strings.ReplaceAll(tc.name, " ", "_"))
			if tc.raw != nil {
				require.NoError(t, facade.Set(ctx, key, *tc.raw))
			}
			fallback := []sample{{ID: "default"}}
			got := fallback
			ok := facade.GetJSON(ctx, key, &got)
			require.Equal(t, tc.found, ok)
			if !tc.found {
				require.Equal(t, fallback, got, "default must survive a failed decode")
				return
			}
			require.Equal(t, []sample{{ID: "c_1", Text: "Shoot video", Done: true}}, got)
		})
	}
}

func TestSetJSONIsDeterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t)

	value := []sample{{ID: "c_1", Text: "Mix <final> & master"}}
	require.NoError(t, facade.SetJSON(ctx, storage.KeyCustomTasks, value))
	first, _, err := facade.Get(ctx, storage.KeyCustomTasks)
	require.NoError(t, err)

	require.NoError(t, facade.SetJSON(ctx, storage.KeyCustomTasks, value))
	second, _, err := facade.Get(ctx, storage.KeyCustomTasks)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, `[{"id":"c_1","text":"Mix <final> & master","done":false}]`, first)
}

func TestJSONKeyLoadStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t)
	key := storage.NewJSONKey[[]sample](storage.KeyCustomTasks)

	require.Empty(t, key.Load(ctx, facade, nil))

	want := []sample{{ID: "c_1", Text: "Book studio"}, {ID: "c_2", Text: "Press photos", Done: true}}
	require.NoError(t, key.Store(ctx, facade, want))
	got := key.Load(ctx, facade, nil)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}
}

func TestQuotaRejectsOversizedWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, backend := newFacade(t, storage.WithQuota(64))

	require.NoError(t, facade.Set(ctx, storage.KeyLastPanel, "menu"))

	large := "data:image/png;base64," + strings.Repeat("A", 128)
	err := facade.Set(ctx, storage.KeyProfileImage, large)
	require.Error(t, err)
	require.True(t, errors.Is(err, storage.ErrQuotaExceeded))

	_, ok, err := backend.Get(ctx, "ws-test", string(storage.KeyProfileImage))
	require.NoError(t, err)
	require.False(t, ok)

	// Replacing a value only charges the difference.
	require.NoError(t, facade.Set(ctx, storage.KeyLastPanel, "checklist"))
	used, err := facade.Usage(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.EntrySize(string(storage.KeyLastPanel), "checklist"), used)
}

func TestQuotaDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t, storage.WithQuota(0))
	require.Zero(t, facade.Quota())
	require.NoError(t, facade.Set(ctx, storage.KeyProfileImage, strings.Repeat("x", 1<<16)))
}

func TestConcurrentWritersLastWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	facade, _ := newFacade(t)

	var wg sync.WaitGroup
	for _, panel := range []string{"menu", "profile", "checklist", "portfolio", "booking"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			assert.NoError(t, facade.Set(ctx, storage.KeyLastPanel, p))
		}(panel)
	}
	wg.Wait()

	value, ok, err := facade.Get(ctx, storage.KeyLastPanel)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, []string{"menu", "profile", "checklist", "portfolio", "booking"}, value)
}

func TestClosedBackend(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Close())

	facade := storage.NewFacade(backend, "ws")
	_, _, err := facade.Get(context.Background(), storage.KeyLastPanel)
	require.ErrorIs(t, err, storage.ErrClosed)
	require.False(t, facade.GetJSON(context.Background(), storage.KeyCustomTasks, &[]sample{}))
}

func TestKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t, storage.Key("jp_profile_stageName"), storage.ProfileFieldKey("stageName"))
	require.Equal(t, storage.Key("jp_check_mix"), storage.BuiltinTaskKey("mix"))
	require.True(t, storage.Owned("jp.last"))
	require.True(t, storage.Owned("jp_bookings"))
	require.False(t, storage.Owned("other.key"))
}

func ptr(s string) *string { return &s }

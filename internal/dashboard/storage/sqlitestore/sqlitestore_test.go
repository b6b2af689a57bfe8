package sqlitestore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/storage/sqlitestore"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := sqlitestore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	_, ok, err := store.Get(ctx, "ws-1", "jp.last")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "ws-1", "jp.last", "profile"))
	require.NoError(t, store.Set(ctx, "ws-1", "jp.last", "checklist"))
	require.NoError(t, store.Set(ctx, "ws-2", "jp.last", "menu"))

	value, ok, err := store.Get(ctx, "ws-1", "jp.last")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "checklist", value)

	usage, err := store.Usage(ctx, "ws-1")
	require.NoError(t, err)
	require.Equal(t, storage.EntrySize("jp.last", "checklist"), usage)

	require.NoError(t, store.Delete(ctx, "ws-1", "jp.last"))
	entries, err := store.Entries(ctx, "ws-1")
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, err = store.Entries(ctx, "ws-2")
	require.NoError(t, err)
	require.Equal(t, []storage.Entry{{Key: "jp.last", Value: "menu"}}, entries)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "dashboard.db")
	ctx := context.Background()

	store, err := sqlitestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "ws", "jp_check_mix", "1"))
	require.NoError(t, store.Close())

	reopened, err := sqlitestore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "ws", "jp_check_mix")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", value)
}

func TestStoreRejectsEmptyScope(t *testing.T) {
	t.Parallel()

	store, err := sqlitestore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	err = store.Set(context.Background(), " ", "k", "v")
	require.True(t, errors.Is(err, storage.ErrInvalidScope))
}

func TestFacadeQuotaOverSQLite(t *testing.T) {
	t.Parallel()

	store, err := sqlitestore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	facade := storage.NewFacade(store, "ws", storage.WithQuota(32))

	require.NoError(t, facade.Set(ctx, storage.KeyLastPanel, "menu"))
	err = facade.Set(ctx, storage.KeyProfileImage, "data:image/png;base64,AAAAAAAAAAAAAAAA")
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)

	_, ok, err := facade.Get(ctx, storage.KeyProfileImage)
	require.NoError(t, err)
	require.False(t, ok, "rejected writes must not persist")
}

package portfolio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/artist-dashboard/internal/dashboard/ids"
	"finitefield.org/artist-dashboard/internal/dashboard/portfolio"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*portfolio.Store, *storage.Facade) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })
	facade := storage.NewFacade(backend, "ws")
	store := portfolio.New(facade,
		portfolio.WithIDGenerator(ids.Sequence("p")),
		portfolio.WithClock(func() time.Time { return fixedNow }),
	)
	return store, facade
}

func collection(t *testing.T, s *portfolio.Store, k portfolio.Kind) *portfolio.Collection {
	t.Helper()
	c, err := s.Collection(k)
	require.NoError(t, err)
	return c
}

func TestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   portfolio.Kind
		fields portfolio.Fields
		field  string
	}{
		{name: "video without link", kind: portfolio.Videos, fields: portfolio.Fields{Title: "Live"}, field: "link"},
		{name: "epk without link", kind: portfolio.EPKs, fields: portfolio.Fields{Title: "Press", Link: "  "}, field: "link"},
		{name: "empty release", kind: portfolio.Releases, fields: portfolio.Fields{}, field: "title"},
		{name: "release title only", kind: portfolio.Releases, fields: portfolio.Fields{Title: "Debut EP"}},
		{name: "release link only", kind: portfolio.Releases, fields: portfolio.Fields{Link: "bandcamp.com/x"}},
		{name: "video with link", kind: portfolio.Videos, fields: portfolio.Fields{Link: "https://x.com/v"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := newStore(t)
			c := collection(t, store, tc.kind)
			ctx := context.Background()

			_, err := c.Add(ctx, tc.fields)
			if tc.field == "" {
				require.NoError(t, err)
				require.Len(t, c.List(ctx), 1)
				return
			}
			var verr *portfolio.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
			require.Empty(t, c.List(ctx), "rejected add must not write")
		})
	}
}

func TestAddRemoveScenario(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	videos := collection(t, store, portfolio.Videos)
	ctx := context.Background()

	item, err := videos.Add(ctx, portfolio.Fields{Title: "Master video", Link: "https://x.com/v"})
	require.NoError(t, err)
	require.Equal(t, portfolio.Item{ID: "p1", Title: "Master video", Link: "https://x.com/v", CreatedAt: fixedNow}, item)

	removed, err := videos.Remove(ctx, "does-not-exist")
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, []portfolio.Item{item}, videos.List(ctx))

	removed, err = videos.Remove(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, videos.List(ctx))
}

func TestCollectionsAreIndependent(t *testing.T) {
	t.Parallel()

	store, facade := newStore(t)
	ctx := context.Background()

	_, err := collection(t, store, portfolio.Releases).Add(ctx, portfolio.Fields{Title: "Single"})
	require.NoError(t, err)

	require.Empty(t, collection(t, store, portfolio.Videos).List(ctx))
	require.Empty(t, collection(t, store, portfolio.EPKs).List(ctx))

	raw, ok, err := facade.Get(ctx, storage.KeyReleases)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"p1","title":"Single","link":"","createdAt":"2024-05-01T12:00:00Z"}]`, raw)
}

func TestCorruptCollectionListsEmpty(t *testing.T) {
	t.Parallel()

	store, facade := newStore(t)
	ctx := context.Background()
	require.NoError(t, facade.Set(ctx, storage.KeyEPKs, "not json"))

	require.Empty(t, collection(t, store, portfolio.EPKs).List(ctx))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := portfolio.ParseKind(" Videos ")
	require.NoError(t, err)
	require.Equal(t, portfolio.Videos, k)

	_, err = portfolio.ParseKind("podcasts")
	require.ErrorIs(t, err, portfolio.ErrUnknownKind)
}

func TestItemDisplay(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Title", portfolio.Item{Title: "Title", Link: "a.com"}.DisplayText())
	require.Equal(t, "a.com", portfolio.Item{Link: "a.com"}.DisplayText())
	require.Equal(t, "https://a.com", portfolio.Item{Link: "a.com"}.Href())
	require.Empty(t, portfolio.Item{Title: "No link"}.Href())
}

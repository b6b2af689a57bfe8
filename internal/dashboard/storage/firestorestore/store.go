// Package firestorestore persists workspace entries in Cloud Firestore, one
// document per key under workspaces/{scope}/entries.
package firestorestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

const (
	workspacesCollection = "workspaces"
	entriesCollection    = "entries"
)

type entryDoc struct {
	Key       string    `firestore:"key"`
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Store is a storage.Backend over Firestore.
type Store struct {
	provider *Provider
	now      func() time.Time
}

var _ storage.Backend = (*Store)(nil)

// New constructs a Store on top of provider.
func New(provider *Provider) *Store {
	return &Store{provider: provider, now: time.Now}
}

func (s *Store) entries(ctx context.Context, scope string) (*firestore.CollectionRef, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, storage.ErrInvalidScope
	}
	client, err := s.provider.Client(ctx)
	if err != nil {
		if errors.Is(err, ErrProviderClosed) {
			return nil, storage.ErrClosed
		}
		return nil, err
	}
	return client.Collection(workspacesCollection).Doc(docID(scope)).Collection(entriesCollection), nil
}

// Get implements storage.Backend.
func (s *Store) Get(ctx context.Context, scope, key string) (string, bool, error) {
	col, err := s.entries(ctx, scope)
	if err != nil {
		return "", false, err
	}
	snap, err := col.Doc(docID(key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapError("firestore.get", err)
	}
	var doc entryDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", false, fmt.Errorf("firestore.get: decode %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Set implements storage.Backend.
func (s *Store) Set(ctx context.Context, scope, key, value string) error {
	col, err := s.entries(ctx, scope)
	if err != nil {
		return err
	}
	_, err = col.Doc(docID(key)).Set(ctx, entryDoc{Key: key, Value: value, UpdatedAt: s.now().UTC()})
	return wrapError("firestore.set", err)
}

// Delete implements storage.Backend.
func (s *Store) Delete(ctx context.Context, scope, key string) error {
	col, err := s.entries(ctx, scope)
	if err != nil {
		return err
	}
	_, err = col.Doc(docID(key)).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return wrapError("firestore.delete", err)
}

// Entries implements storage.Backend.
func (s *Store) Entries(ctx context.Context, scope string) ([]storage.Entry, error) {
	col, err := s.entries(ctx, scope)
	if err != nil {
		return nil, err
	}
	iter := col.Documents(ctx)
	defer iter.Stop()

	var out []storage.Entry
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrapError("firestore.entries", err)
		}
		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore.entries: decode %s: %w", snap.Ref.ID, err)
		}
		out = append(out, storage.Entry{Key: doc.Key, Value: doc.Value})
	}
	storage.SortEntries(out)
	return out, nil
}

// Usage implements storage.Backend.
func (s *Store) Usage(ctx context.Context, scope string) (int64, error) {
	entries, err := s.Entries(ctx, scope)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += storage.EntrySize(e.Key, e.Value)
	}
	return total, nil
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	return s.provider.Close()
}

// docID escapes characters Firestore forbids in document ids.
func docID(raw string) string {
	return url.PathEscape(raw)
}

// wrapError maps gRPC status codes onto storage semantics. Oversized
// documents surface as quota errors, context cancellation passes through.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.InvalidArgument, codes.ResourceExhausted:
		return fmt.Errorf("%s: %w: %v", op, storage.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Package storage implements the persistent key/value layer behind every
// dashboard component. A Facade is bound to one workspace scope and sits on
// top of a Backend (memory, SQLite or Firestore).
package storage

import (
	"context"
	"errors"
	"sort"
)

// DefaultQuotaBytes mirrors the budget browsers grant to local storage.
const DefaultQuotaBytes int64 = 5 << 20

var (
	// ErrQuotaExceeded indicates a write was rejected because the workspace
	// would grow past its byte quota. Callers surface it as a warning.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
	// ErrClosed is returned by backends after Close.
	ErrClosed = errors.New("storage: backend closed")
	// ErrInvalidScope indicates an empty workspace scope.
	ErrInvalidScope = errors.New("storage: scope is required")
)

// Backend persists string values addressed by (scope, key).
type Backend interface {
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
	// Entries returns every entry stored under scope, sorted by key.
	Entries(ctx context.Context, scope string) ([]Entry, error)
	// Usage reports the bytes (key + value) stored under scope.
	Usage(ctx context.Context, scope string) (int64, error)
	Close() error
}

// Entry is a single stored key/value pair.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// EntrySize is the byte cost charged against the quota for one entry.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// SortEntries orders entries by key.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
}

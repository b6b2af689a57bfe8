package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryBackend keeps entries in process memory. It backs tests and the
// "memory" storage driver; contents vanish on restart.
type MemoryBackend struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
	closed bool
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{scopes: make(map[string]map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, scope, key string) (string, bool, error) {
	if strings.TrimSpace(scope) == "" {
		return "", false, ErrInvalidScope
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	value, ok := m.scopes[scope][key]
	return value, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, scope, key, value string) error {
	if strings.TrimSpace(scope) == "" {
		return ErrInvalidScope
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	entries, ok := m.scopes[scope]
	if !ok {
		entries = make(map[string]string)
		m.scopes[scope] = entries
	}
	entries[key] = value
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, scope, key string) error {
	if strings.TrimSpace(scope) == "" {
		return ErrInvalidScope
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.scopes[scope], key)
	return nil
}

// Entries implements Backend.
func (m *MemoryBackend) Entries(_ context.Context, scope string) ([]Entry, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, ErrInvalidScope
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	entries := make([]Entry, 0, len(m.scopes[scope]))
	for key, value := range m.scopes[scope] {
		entries = append(entries, Entry{Key: key, Value: value})
	}
	SortEntries(entries)
	return entries, nil
}

// Usage implements Backend.
func (m *MemoryBackend) Usage(_ context.Context, scope string) (int64, error) {
	if strings.TrimSpace(scope) == "" {
		return 0, ErrInvalidScope
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	var total int64
	for key, value := range m.scopes[scope] {
		total += EntrySize(key, value)
	}
	return total, nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.scopes = nil
	return nil
}

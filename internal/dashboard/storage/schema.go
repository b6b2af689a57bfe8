package storage

import "context"

// JSONKey ties a Key to the Go type stored under it, so encoding and
// decoding for that key happen in exactly one place.
type JSONKey[T any] struct {
	Key Key
}

// NewJSONKey declares a typed JSON key.
func NewJSONKey[T any](key Key) JSONKey[T] {
	return JSONKey[T]{Key: key}
}

// Load returns the stored value, or fallback when the key is absent or its
// contents cannot be decoded.
func (k JSONKey[T]) Load(ctx context.Context, f *Facade, fallback T) T {
	value := fallback
	if !f.GetJSON(ctx, k.Key, &value) {
		return fallback
	}
	return value
}

// Store encodes and persists value.
func (k JSONKey[T]) Store(ctx context.Context, f *Facade, value T) error {
	return f.SetJSON(ctx, k.Key, value)
}

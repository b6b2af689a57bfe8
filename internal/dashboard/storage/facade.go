package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/artist-dashboard/internal/dashboard/observability"
)

// Facade is the only way dashboard components touch persistent state. It is
// bound to a single workspace scope and enforces that scope's byte quota.
type Facade struct {
	backend Backend
	scope   string
	quota   int64
}

// FacadeOption customises a Facade.
type FacadeOption func(*Facade)

// WithQuota overrides the byte quota. Zero or negative disables the check.
func WithQuota(bytes int64) FacadeOption {
	return func(f *Facade) {
		f.quota = bytes
	}
}

// NewFacade binds backend to scope.
func NewFacade(backend Backend, scope string, opts ...FacadeOption) *Facade {
	f := &Facade{
		backend: backend,
		scope:   strings.TrimSpace(scope),
		quota:   DefaultQuotaBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Get returns the raw value stored under key.
func (f *Facade) Get(ctx context.Context, key Key) (value string, ok bool, err error) {
	ctx, span := startSpan(ctx, "get", f.scope, key)
	defer func() { finishSpan(span, "get", err) }()

	value, ok, err = f.backend.Get(ctx, f.scope, string(key))
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, ok, nil
}

// Set stores value under key. When the write would push the workspace past
// its quota, nothing is written and the error wraps ErrQuotaExceeded.
func (f *Facade) Set(ctx context.Context, key Key, value string) (err error) {
	ctx, span := startSpan(ctx, "set", f.scope, key)
	defer func() { finishSpan(span, "set", err) }()

	if f.quota > 0 {
		if err := f.checkQuota(ctx, key, value); err != nil {
			return err
		}
	}
	if err := f.backend.Set(ctx, f.scope, string(key), value); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Missing keys are not an error.
func (f *Facade) Remove(ctx context.Context, key Key) (err error) {
	ctx, span := startSpan(ctx, "remove", f.scope, key)
	defer func() { finishSpan(span, "remove", err) }()

	if err := f.backend.Delete(ctx, f.scope, string(key)); err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value under key into dst. It fails soft: when the key
// is absent, unreadable or holds malformed JSON, dst is left untouched (so
// it keeps the caller's default) and false is returned.
func (f *Facade) GetJSON(ctx context.Context, key Key, dst any) bool {
	raw, ok, err := f.Get(ctx, key)
	if err != nil {
		observability.FromContext(ctx).Warn("storage read failed; using default",
			zap.String("key", string(key)),
			zap.Error(err),
		)
		return false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false
	}
	if err := decodeInto([]byte(raw), dst); err != nil {
		decodeFailures.Inc()
		observability.FromContext(ctx).Debug("discarding malformed stored value",
			zap.String("key", string(key)),
			zap.Error(err),
		)
		return false
	}
	return true
}

// SetJSON encodes v deterministically and stores it under key.
func (f *Facade) SetJSON(ctx context.Context, key Key, v any) error {
	encoded, err := Encode(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return f.Set(ctx, key, encoded)
}

// Entries lists every entry in the workspace.
func (f *Facade) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := f.backend.Entries(ctx, f.scope)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", f.scope, err)
	}
	return entries, nil
}

// Usage reports the bytes currently charged to the workspace.
func (f *Facade) Usage(ctx context.Context) (int64, error) {
	used, err := f.backend.Usage(ctx, f.scope)
	if err != nil {
		return 0, fmt.Errorf("storage: usage %s: %w", f.scope, err)
	}
	return used, nil
}

// Quota returns the configured byte quota (0 when unlimited).
func (f *Facade) Quota() int64 {
	if f.quota < 0 {
		return 0
	}
	return f.quota
}

func (f *Facade) checkQuota(ctx context.Context, key Key, value string) error {
	used, err := f.backend.Usage(ctx, f.scope)
	if err != nil {
		return fmt.Errorf("storage: usage %s: %w", f.scope, err)
	}
	previous, ok, err := f.backend.Get(ctx, f.scope, string(key))
	if err != nil {
		return fmt.Errorf("storage: get %s: %w", key, err)
	}
	if ok {
		used -= EntrySize(string(key), previous)
	}
	needed := EntrySize(string(key), value)
	if used+needed > f.quota {
		return fmt.Errorf("%w: %s needs %d bytes, %d of %d in use", ErrQuotaExceeded, key, needed, used, f.quota)
	}
	return nil
}

// Encode serialises v as compact JSON without HTML escaping, so identical
// values always produce identical bytes.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// decodeInto unmarshals into a fresh value of dst's type so a failed decode
// never leaves dst half-populated.
func decodeInto(raw []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("storage: decode target must be a non-nil pointer")
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// Package profile persists the artist profile: a fixed set of text fields
// plus an avatar stored as a data URI.
package profile

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/textutil"
)

// DefaultMaxAvatarBytes bounds the raw upload size.
const DefaultMaxAvatarBytes = 2 << 20

// MaxAvatarPixels bounds the decoded size of an avatar. Compressed images
// can be tiny while their pixel buffer is not, so the header is checked
// before any pixel is decoded.
const MaxAvatarPixels = 4096 * 4096

var (
	// ErrInvalidImage is returned for uploads that are not PNG, JPEG or GIF.
	ErrInvalidImage = errors.New("profile: file is not a supported image")
	// ErrImageTooLarge is returned for uploads over the configured limit.
	ErrImageTooLarge = errors.New("profile: image is too large")
)

// Record is the persisted profile.
type Record struct {
	Values map[string]string
	Avatar string
}

// Value returns the value of a field, or "" when unset.
func (r Record) Value(name string) string {
	return r.Values[name]
}

// Avatar is a decoded upload ready for display.
type Avatar struct {
	DataURI string
	MIME    string
	Width   int
	Height  int
}

// Store reads and writes the profile of one workspace.
type Store struct {
	facade   *storage.Facade
	maxBytes int
}

// Option customises a Store.
type Option func(*Store)

// WithMaxAvatarBytes overrides the upload limit. Non-positive values keep
// the default.
func WithMaxAvatarBytes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// New returns a Store backed by facade.
func New(facade *storage.Facade, opts ...Option) *Store {
	s := &Store{facade: facade, maxBytes: DefaultMaxAvatarBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// MaxAvatarBytes returns the upload limit.
func (s *Store) MaxAvatarBytes() int {
	return s.maxBytes
}

// Load reads every field that has been persisted. Unset fields are absent
// from Values.
func (s *Store) Load(ctx context.Context) (Record, error) {
	rec := Record{Values: make(map[string]string, len(Fields))}
	for _, f := range Fields {
		value, ok, err := s.facade.Get(ctx, storage.ProfileFieldKey(f.Name))
		if err != nil {
			return Record{}, fmt.Errorf("profile: load %s: %w", f.Name, err)
		}
		if ok {
			rec.Values[f.Name] = value
		}
	}
	avatar, ok, err := s.facade.Get(ctx, storage.KeyProfileImage)
	if err != nil {
		return Record{}, fmt.Errorf("profile: load avatar: %w", err)
	}
	if ok {
		rec.Avatar = avatar
	}
	return rec, nil
}

// Save writes every field, blank ones as "". Unknown names in values are
// ignored. Fields are written one at a time; the first failure stops the
// save and earlier writes stay in place.
func (s *Store) Save(ctx context.Context, values map[string]string) (Record, error) {
	rec := Record{Values: make(map[string]string, len(Fields))}
	for _, f := range Fields {
		value := textutil.Clean(values[f.Name])
		if err := s.facade.Set(ctx, storage.ProfileFieldKey(f.Name), value); err != nil {
			return rec, fmt.Errorf("profile: save %s: %w", f.Name, err)
		}
		rec.Values[f.Name] = value
	}
	return rec, nil
}

// UploadAvatar decodes data and persists it as a data URI. When the image
// decodes but cannot be stored, the avatar is still returned together with
// the storage error so it can be shown for the current page.
func (s *Store) UploadAvatar(ctx context.Context, data []byte) (Avatar, error) {
	if len(data) > s.maxBytes {
		return Avatar{}, fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(data), s.maxBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Avatar{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxAvatarPixels {
		return Avatar{}, fmt.Errorf("%w: %dx%d pixels", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	// Truncated or corrupt pixel data only shows up in a full decode.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return Avatar{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	mime := "image/" + format
	avatar := Avatar{
		DataURI: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		MIME:    mime,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}
	if err := s.facade.Set(ctx, storage.KeyProfileImage, avatar.DataURI); err != nil {
		return avatar, fmt.Errorf("profile: save avatar: %w", err)
	}
	return avatar, nil
}

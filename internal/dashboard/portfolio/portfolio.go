// Package portfolio manages the three add/delete-only collections shown on
// the portfolio panel: releases, videos and EPKs.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"finitefield.org/artist-dashboard/internal/dashboard/ids"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/textutil"
)

// Kind names a collection.
type Kind string

const (
	Releases Kind = "releases"
	Videos   Kind = "videos"
	EPKs     Kind = "epks"
)

// ErrUnknownKind is returned for collection names other than the three
// supported ones.
var ErrUnknownKind = errors.New("portfolio: unknown collection")

var kindKeys = map[Kind]storage.Key{
	Releases: storage.KeyReleases,
	Videos:   storage.KeyVideos,
	EPKs:     storage.KeyEPKs,
}

var kindTitles = map[Kind]string{
	Releases: "Releases",
	Videos:   "Videos",
	EPKs:     "EPKs",
}

// Kinds returns the collections in display order.
func Kinds() []Kind {
	return []Kind{Releases, Videos, EPKs}
}

// ParseKind validates raw as a collection name.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := kindKeys[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// Title returns the heading of the collection.
func (k Kind) Title() string {
	return kindTitles[k]
}

// LinkRequired reports whether items of this kind must carry a link.
func (k Kind) LinkRequired() bool {
	return k == Videos || k == EPKs
}

// Item is one stored portfolio entry.
type Item struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Link      string    `json:"link" yaml:"link"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// DisplayText is the title, or the link when the title is blank.
func (i Item) DisplayText() string {
	if strings.TrimSpace(i.Title) != "" {
		return i.Title
	}
	return i.Link
}

// Href is the link with a scheme, or "" when the item has no link.
func (i Item) Href() string {
	return textutil.EnsureScheme(i.Link)
}

// Fields are the submitted inputs of the add form.
type Fields struct {
	Title string
	Link  string
}

// ValidationError reports missing required inputs.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("portfolio: %s: %s", e.Kind, e.Message)
}

// Collection is one kind's list within a workspace.
type Collection struct {
	kind   Kind
	key    storage.JSONKey[[]Item]
	facade *storage.Facade
	newID  ids.Generator
	now    func() time.Time
}

// Option customises a Collection.
type Option func(*Collection)

// WithIDGenerator overrides how item ids are produced.
func WithIDGenerator(gen ids.Generator) Option {
	return func(c *Collection) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollection returns the collection of kind stored in facade.
func NewCollection(facade *storage.Facade, kind Kind, opts ...Option) (*Collection, error) {
	key, ok := kindKeys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	c := &Collection{
		kind:   kind,
		key:    storage.NewJSONKey[[]Item](key),
		facade: facade,
		newID:  ids.New,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Kind returns the collection kind.
func (c *Collection) Kind() Kind {
	return c.kind
}

// List returns the stored items, or none when absent or unreadable.
func (c *Collection) List(ctx context.Context) []Item {
	return c.key.Load(ctx, c.facade, nil)
}

// Validate checks f against the kind's required inputs.
func (c *Collection) Validate(f Fields) error {
	title, link := textutil.Clean(f.Title), textutil.Clean(f.Link)
	switch {
	case c.kind.LinkRequired() && link == "":
		return &ValidationError{Kind: c.kind, Field: "link", Message: "a link is required"}
	case !c.kind.LinkRequired() && title == "" && link == "":
		return &ValidationError{Kind: c.kind, Field: "title", Message: "enter a title or a link"}
	}
	return nil
}

// Add validates f and appends a new item. Validation failures write
// nothing.
func (c *Collection) Add(ctx context.Context, f Fields) (Item, error) {
	if err := c.Validate(f); err != nil {
		return Item{}, err
	}
	item := Item{
		ID:        c.newID(),
		Title:     textutil.Clean(f.Title),
		Link:      textutil.Clean(f.Link),
		CreatedAt: c.now().UTC(),
	}
	updated := append(slices.Clone(c.List(ctx)), item)
	if err := c.key.Store(ctx, c.facade, updated); err != nil {
		return Item{}, fmt.Errorf("portfolio: add to %s: %w", c.kind, err)
	}
	return item, nil
}

// Remove deletes the item with id. Unknown ids are a no-op reported with
// removed=false.
func (c *Collection) Remove(ctx context.Context, id string) (removed bool, err error) {
	current := c.List(ctx)
	updated := slices.DeleteFunc(slices.Clone(current), func(it Item) bool { return it.ID == id })
	if len(updated) == len(current) {
		return false, nil
	}
	if err := c.key.Store(ctx, c.facade, updated); err != nil {
		return false, fmt.Errorf("portfolio: remove from %s: %w", c.kind, err)
	}
	return true, nil
}

// Store groups the three collections of a workspace.
type Store struct {
	collections map[Kind]*Collection
}

// New returns a Store with every collection bound to facade.
func New(facade *storage.Facade, opts ...Option) *Store {
	s := &Store{collections: make(map[Kind]*Collection, len(kindKeys))}
	for _, k := range Kinds() {
		// Kinds only yields known kinds.
		c, _ := NewCollection(facade, k, opts...)
		s.collections[k] = c
	}
	return s
}

// Collection returns the collection of kind.
func (s *Store) Collection(kind Kind) (*Collection, error) {
	c, ok := s.collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}

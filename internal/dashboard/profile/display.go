package profile

import (
	"context"
	"html/template"

	"finitefield.org/artist-dashboard/internal/dashboard/textutil"
)

const (
	// NamePlaceholder is shown until a stage name is saved.
	NamePlaceholder = "Your Stage Name"
	// CountPlaceholder is shown for unset counts.
	CountPlaceholder = "—"
)

// SocialLink is one rendered link on the profile card.
type SocialLink struct {
	Field string
	Label string
	Href  string
	Text  string
}

// Display is the read-only profile card.
type Display struct {
	Name      string
	Genre     string
	Headline  string
	Email     string
	Timezone  string
	Followers string
	Streams   string
	Releases  string
	Links     []SocialLink
	Bio       template.HTML
	Avatar    string
}

// Display loads the profile and derives the card.
func (s *Store) Display(ctx context.Context) (Display, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return Display{}, err
	}
	return NewDisplay(rec), nil
}

// NewDisplay derives the card from rec.
func NewDisplay(rec Record) Display {
	d := Display{
		Name:      orDefault(rec.Value("stageName"), NamePlaceholder),
		Genre:     textutil.Clean(rec.Value("genre")),
		Headline:  textutil.Clean(rec.Value("headline")),
		Email:     textutil.Clean(rec.Value("email")),
		Timezone:  textutil.Clean(rec.Value("timezone")),
		Followers: orDefault(rec.Value("followers"), CountPlaceholder),
		Streams:   orDefault(rec.Value("streams"), CountPlaceholder),
		Releases:  orDefault(rec.Value("releases"), CountPlaceholder),
		Avatar:    rec.Avatar,
		// Sanitised by the UGC policy before it reaches the template.
		Bio: template.HTML(textutil.RenderMarkdown(rec.Value("bio"))),
	}
	for _, name := range socialFields {
		raw := textutil.Clean(rec.Value(name))
		if raw == "" {
			continue
		}
		d.Links = append(d.Links, SocialLink{
			Field: name,
			Label: fieldLabel(name),
			Href:  textutil.EnsureScheme(raw),
			Text:  raw,
		})
	}
	return d
}

func orDefault(value, fallback string) string {
	if v := textutil.Clean(value); v != "" {
		return v
	}
	return fallback
}

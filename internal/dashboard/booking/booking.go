// Package booking records consultation requests in an append-only log.
package booking

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"finitefield.org/artist-dashboard/internal/dashboard/ids"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/textutil"
)

// Platforms offered on the booking form.
var Platforms = []string{"Zoom", "Google Meet", "Phone", "In person"}

// Request holds the submitted form fields.
type Request struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Platform string `json:"platform" yaml:"platform"`
	DateTime string `json:"datetime" yaml:"datetime"`
	Rate     string `json:"rate" yaml:"rate"`
}

// Record is one logged request.
type Record struct {
	ID          string `json:"id" yaml:"id"`
	Request     `yaml:",inline"`
	SubmittedAt time.Time `json:"submittedAt" yaml:"submittedAt"`
}

// Confirmation is the message shown after a successful submit.
func (r Record) Confirmation() string {
	return fmt.Sprintf("Thanks %s! We'll reach out at %s to confirm your %s session on %s at $%s/hr.",
		r.Name, r.Email, r.Platform, r.DateTime, r.Rate)
}

// FieldError is one invalid input.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid input of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "booking: invalid request: " + strings.Join(parts, "; ")
}

// Message returns the message for field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

var bookings = storage.NewJSONKey[[]Record](storage.KeyBookings)

// Recorder appends requests to a workspace's booking log.
type Recorder struct {
	facade *storage.Facade
	newID  ids.Generator
	now    func() time.Time
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithIDGenerator overrides how record ids are produced.
func WithIDGenerator(gen ids.Generator) Option {
	return func(r *Recorder) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder returns a Recorder backed by facade.
func NewRecorder(facade *storage.Facade, opts ...Option) *Recorder {
	r := &Recorder{facade: facade, newID: ids.New, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Normalize returns req with every field cleaned.
func Normalize(req Request) Request {
	return Request{
		Name:     textutil.Clean(req.Name),
		Email:    textutil.Clean(req.Email),
		Platform: textutil.Clean(req.Platform),
		DateTime: textutil.Clean(req.DateTime),
		Rate:     strings.TrimPrefix(textutil.Clean(req.Rate), "$"),
	}
}

// Validate checks the required inputs of req.
func Validate(req Request) error {
	var fields []FieldError
	if textutil.IsBlank(req.Name) {
		fields = append(fields, FieldError{Field: "name", Message: "Name is required"})
	}
	switch {
	case textutil.IsBlank(req.Email):
		fields = append(fields, FieldError{Field: "email", Message: "Email is required"})
	case !validEmail(req.Email):
		fields = append(fields, FieldError{Field: "email", Message: "Enter a valid email address"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

// Submit validates req and appends it to the log.
func (r *Recorder) Submit(ctx context.Context, req Request) (Record, error) {
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return Record{}, err
	}
	rec := Record{ID: r.newID(), Request: req, SubmittedAt: r.now().UTC()}
	updated := append(slices.Clone(bookings.Load(ctx, r.facade, nil)), rec)
	if err := bookings.Store(ctx, r.facade, updated); err != nil {
		return rec, fmt.Errorf("booking: record: %w", err)
	}
	return rec, nil
}

// Log returns every recorded request. It backs the export command; the
// dashboard itself never shows the log.
func (r *Recorder) Log(ctx context.Context) []Record {
	return bookings.Load(ctx, r.facade, nil)
}

package profile

import "context"

// FormField is one input of the profile form.
type FormField struct {
	Field
	Value string
}

// Form is the profile editor view model.
type Form struct {
	Fields   []FormField
	Avatar   string
	Editable bool
	Focus    string
}

// Form loads the profile into an editor. Entering edit mode focuses the
// stage name.
func (s *Store) Form(ctx context.Context, editable bool) (Form, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return Form{}, err
	}
	return NewForm(rec, editable), nil
}

// NewForm builds an editor from rec.
func NewForm(rec Record, editable bool) Form {
	form := Form{
		Fields:   make([]FormField, 0, len(Fields)),
		Avatar:   rec.Avatar,
		Editable: editable,
	}
	for _, f := range Fields {
		form.Fields = append(form.Fields, FormField{Field: f, Value: rec.Value(f.Name)})
	}
	if editable {
		form.Focus = FocusField
	}
	return form
}

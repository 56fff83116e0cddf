// Package editform holds the draft state of an edit modal: a copy of the
// record being edited, the fields the modal shows, and the save/close
// transitions.
package editform

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/leadhub/internal/app/system/listview"
)

// Kind selects the input a field renders as.
type Kind string

const (
	Text     Kind = "text"
	TextArea Kind = "textarea"
	Select   Kind = "select"
	Number   Kind = "number"
	ReadOnly Kind = "readonly"
)

// Choice is one option of a Select field.
type Choice struct {
	Value string
	Label string
}

// Field binds a named input to a record of type T.
type Field[T any] struct {
	Name    string
	Label   string
	Kind    Kind
	Options []Choice
	Get     func(T) string
	Set     func(*T, string)
}

// Input is a field with its current draft value, ready for a template.
type Input struct {
	Name     string
	Label    string
	Kind     Kind
	Options  []Choice
	Value    string
	Selected string
}

// Outcome is what Save did.
type Outcome int

const (
	Open   Outcome = iota // save failed; the draft is kept
	Saved                 // onSave succeeded; the form is closed
	Closed                // the guard refused; the form is closed without saving
)

// Guard inspects the draft before saving. Returning false closes the form
// without calling onSave.
type Guard[T any] func(draft T) bool

// Form is the state of one edit modal.
type Form[T any] struct {
	fields []Field[T]
	draft  T
	open   bool
	guard  Guard[T]
}

// New opens a form whose draft starts as a copy of initial.
func New[T any](initial T, fields []Field[T]) *Form[T] {
	return &Form[T]{fields: fields, draft: initial, open: true}
}

// WithGuard installs g and returns f.
func (f *Form[T]) WithGuard(g Guard[T]) *Form[T] {
	f.guard = g
	return f
}

// IsOpen reports whether the form still holds a draft.
func (f *Form[T]) IsOpen() bool { return f.open }

// Draft returns the current draft.
func (f *Form[T]) Draft() T { return f.draft }

// Inputs lists the fields with their draft values.
func (f *Form[T]) Inputs() []Input {
	out := make([]Input, 0, len(f.fields))
	for _, fd := range f.fields {
		in := Input{Name: fd.Name, Label: fd.Label, Kind: fd.Kind, Options: fd.Options}
		if fd.Get != nil {
			in.Value = fd.Get(f.draft)
		}
		in.Selected = in.Value
		out = append(out, in)
	}
	return out
}

// Apply copies submitted values into the draft. Fields that are read-only,
// have no setter, or are absent from values are left alone. A select value
// outside its options or a non-numeric number is a validation error and
// leaves the draft unchanged.
func (f *Form[T]) Apply(values url.Values) error {
	next := f.draft
	for _, fd := range f.fields {
		if fd.Kind == ReadOnly || fd.Set == nil {
			continue
		}
		if _, ok := values[fd.Name]; !ok {
			continue
		}
		v := values.Get(fd.Name)
		if fd.Kind != TextArea {
			v = strings.TrimSpace(v)
		}
		switch fd.Kind {
		case Number:
			if v != "" {
				if _, err := strconv.Atoi(v); err != nil {
					return listview.Invalid(fd.Label + " 값이 올바르지 않습니다.")
				}
			}
		case Select:
			if !hasChoice(fd.Options, v) {
				return listview.Invalid(fd.Label + " 값이 올바르지 않습니다.")
			}
		}
		fd.Set(&next, v)
	}
	f.draft = next
	return nil
}

// Save hands the draft to onSave. When a guard refuses the draft the form
// closes and onSave is not called.
func (f *Form[T]) Save(ctx context.Context, onSave func(context.Context, T) error) (Outcome, error) {
	if !f.open {
		return Closed, nil
	}
	if f.guard != nil && !f.guard(f.draft) {
		f.Close()
		return Closed, nil
	}
	if err := onSave(ctx, f.draft); err != nil {
		return Open, err
	}
	f.Close()
	return Saved, nil
}

// Close discards the draft.
func (f *Form[T]) Close() {
	var zero T
	f.draft = zero
	f.open = false
}

// LevelGuard refuses drafts that request a level numerically lower (more
// privileged) than the editor's own. A requested level of 0 means the
// field was left unset and passes.
func LevelGuard[T any](editorLevel int, requested func(T) int) Guard[T] {
	return func(d T) bool {
		lvl := requested(d)
		return lvl == 0 || lvl >= editorLevel
	}
}

func hasChoice(opts []Choice, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

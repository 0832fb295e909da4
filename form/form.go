// Package form binds a validation schema to a set of mutable field values
// and drives the change/blur/submit lifecycle of a single form instance.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/minjae-ko/playkit/validate"
)

// ErrValidationFailed is returned by Submit when full-form validation finds
// at least one error; the submit callback is never invoked in that case.
var ErrValidationFailed = errors.New("form validation failed")

// Options control when individual fields are re-validated outside of submit.
type Options struct {
	// ValidateOnChange re-validates a field after its value changes, but only
	// once the field has been touched. The re-validation runs after the value
	// has landed, mirroring the deferred-to-next-tick behavior of event-loop
	// UIs; no ordering is promised relative to other state read mid-change.
	ValidateOnChange bool

	// ValidateOnBlur re-validates a field immediately when it loses focus.
	ValidateOnBlur bool
}

// Form is the state container for one form instance: current values, touched
// flags, per-field errors and the dirty/submitting markers. All methods
// serialize on an internal lock, the single-threaded analog of running every
// handler to completion.
type Form struct {
	mu sync.Mutex

	schema  validate.Schema
	opts    Options
	initial map[string]string

	values     map[string]string
	touched    map[string]bool
	errors     validate.Errors
	submitting bool
	dirty      bool
}

// New creates a form with the given initial values bound to a schema. The
// initial map is copied; later mutation of the caller's map has no effect.
func New(initial map[string]string, schema validate.Schema, opts Options) *Form {
	f := &Form{
		schema:  schema,
		opts:    opts,
		initial: copyValues(initial),
		values:  copyValues(initial),
		touched: make(map[string]bool),
		errors:  make(validate.Errors),
	}
	return f
}

// Change records a new value for the field and marks the form dirty. When
// ValidateOnChange is set and the field has already been touched, the field
// is re-validated against the freshly stored value before Change returns.
func (f *Form) Change(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[name] = value
	f.dirty = true

	if f.opts.ValidateOnChange && f.touched[name] {
		f.validateFieldLocked(name)
	}
}

// Blur marks the field touched; with ValidateOnBlur it re-validates the
// single field immediately.
func (f *Form) Blur(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.touched[name] = true
	if f.opts.ValidateOnBlur {
		f.validateFieldLocked(name)
	}
}

// Submit marks every schema field touched, runs full-form validation and, if
// it passes, invokes onSubmit with a snapshot of the current values. The
// errors mapping is replaced wholesale by the validation result either way.
// A validation failure returns ErrValidationFailed without calling onSubmit.
// An error from onSubmit is returned to the caller unchanged; the form stays
// dirty so the user can retry. Only a successful submit clears the dirty
// flag.
func (f *Form) Submit(ctx context.Context, onSubmit func(ctx context.Context, values map[string]string) error) error {
	f.mu.Lock()
	for name := range f.schema {
		f.touched[name] = true
	}
	f.errors = validate.Form(f.values, f.schema)
	if len(f.errors) > 0 {
		f.mu.Unlock()
		return ErrValidationFailed
	}
	f.submitting = true
	snapshot := copyValues(f.values)
	f.mu.Unlock()

	err := onSubmit(ctx, snapshot)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.dirty = false
	}
	f.mu.Unlock()
	return err
}

// Reset restores the form to the given values, or to the original initial
// values when newValues is nil. Errors, touched flags, dirty and submitting
// are cleared unconditionally.
func (f *Form) Reset(newValues map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if newValues != nil {
		f.initial = copyValues(newValues)
	}
	f.values = copyValues(f.initial)
	f.touched = make(map[string]bool)
	f.errors = make(validate.Errors)
	f.dirty = false
	f.submitting = false
}

// SetFieldValue sets a value directly, bypassing the automatic validation
// triggers. Callers using the programmatic setters own consistency.
func (f *Form) SetFieldValue(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	f.dirty = true
}

// SetFieldError sets or clears (empty message) a single field error.
func (f *Form) SetFieldError(name, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message == "" {
		delete(f.errors, name)
		return
	}
	f.errors[name] = message
}

// SetFieldTouched sets the touched flag directly.
func (f *Form) SetFieldTouched(name string, touched bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[name] = touched
}

// SetValues replaces all values wholesale without validating.
func (f *Form) SetValues(values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = copyValues(values)
	f.dirty = true
}

// SetErrors replaces the error mapping wholesale, typically with field
// errors returned by the backend.
func (f *Form) SetErrors(errs validate.Errors) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = make(validate.Errors, len(errs))
	for k, v := range errs {
		f.errors[k] = v
	}
}

// Value returns the current value of a field.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of the current values.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyValues(f.values)
}

// Error returns the current error message for a field, empty when valid.
func (f *Form) Error(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[name]
}

// Errors returns a copy of the current error mapping.
func (f *Form) Errors() validate.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(validate.Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Touched reports whether the field has been blurred at least once.
func (f *Form) Touched(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[name]
}

// Dirty reports whether any value has changed since the last reset.
func (f *Form) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

// Submitting reports whether a submit callback is currently running.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Valid is derived, not stored: true when no errors are recorded AND every
// required schema field currently holds a non-empty value. It can therefore
// be true before any validation pass has run; the optimistic default keeps
// submit buttons enabled on freshly filled forms.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.errors) > 0 {
		return false
	}
	for name, rule := range f.schema {
		if rule.Required && strings.TrimSpace(f.values[name]) == "" {
			return false
		}
	}
	return true
}

// validateFieldLocked re-runs the single field's rule against its current
// value and updates the error mapping per-key. Caller holds f.mu.
func (f *Form) validateFieldLocked(name string) {
	rule, ok := f.schema[name]
	if !ok {
		return
	}
	if err := validate.Field(f.values[name], rule); err != nil {
		f.errors[name] = err.Error()
	} else {
		delete(f.errors, name)
	}
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

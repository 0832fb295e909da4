// Package validate implements the client-side form validation engine: a
// declarative per-field rule set evaluated in a fixed order, and a form-level
// aggregator that collects failures into a field → message mapping.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule describes the checks applied to a single form field. A zero value for
// any check means the check is skipped. Rules are constructed once per field
// schema and must not be mutated afterwards; they are safe to share across
// validation calls.
type Rule struct {
	// Required rejects empty values. String values are trimmed first, so a
	// whitespace-only input counts as empty.
	Required bool

	// MinLength and MaxLength bound the value's length in runes, both
	// boundaries inclusive. Zero means unbounded.
	MinLength int
	MaxLength int

	// Pattern must match the whole value when set, the empty string
	// included; a pattern for an optional field must admit "". A nil pattern
	// skips the check. Compiling the pattern is the caller's job; a pattern
	// that can never match is a caller bug, not handled here.
	Pattern *regexp.Regexp

	// Custom is the escape hatch for anything the declarative checks cannot
	// express, including cross-field logic via closures over other current
	// values. It returns nil when the value is valid.
	Custom func(value string) error
}

// Schema maps field names to their rules. Lookup is by key; order is
// irrelevant.
type Schema map[string]Rule

// Errors maps field names to error messages. Absence of a key means the
// field is valid.
type Errors map[string]string

// Check order is fixed: required, minLength, maxLength, pattern, custom.
// The first failing check short-circuits, so "ab" against
// {Required, MinLength: 3} fails on minLength, not required.

// Field runs a single rule against a value and returns nil when every check
// passes. It is a pure function of its inputs.
func Field(value string, rule Rule) error {
	if rule.Required && strings.TrimSpace(value) == "" {
		return errors.New("this field is required")
	}

	length := utf8.RuneCountInString(value)
	if rule.MinLength > 0 && length < rule.MinLength {
		return fmt.Errorf("must be at least %d characters", rule.MinLength)
	}
	if rule.MaxLength > 0 && length > rule.MaxLength {
		return fmt.Errorf("must be at most %d characters", rule.MaxLength)
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return errors.New("invalid format")
	}

	if rule.Custom != nil {
		if err := rule.Custom(value); err != nil {
			return err
		}
	}

	return nil
}

// Form validates every field named in the schema against the corresponding
// value and collects failures. Fields present in values but absent from the
// schema are never validated; schemas are opt-in per form. The result is
// deterministic: identical inputs produce an identical mapping.
func Form(values map[string]string, schema Schema) Errors {
	errs := make(Errors)
	for name, rule := range schema {
		if err := Field(values[name], rule); err != nil {
			errs[name] = err.Error()
		}
	}
	return errs
}

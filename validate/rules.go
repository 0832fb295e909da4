package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Patterns for the fields that recur across the app's forms.
var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// E.164, with the empty alternative so the field stays optional.
	phonePattern = regexp.MustCompile(`^(\+?[1-9]\d{1,14})?$`)
)

// Email returns the rule used by every email field: required, bounded, and
// matched against a permissive address pattern.
func Email() Rule {
	return Rule{Required: true, MaxLength: 255, Pattern: emailPattern}
}

// Phone returns an optional phone-number rule in E.164 format.
func Phone() Rule {
	return Rule{Pattern: phonePattern}
}

// Password returns the signup password rule: at least 8 characters with one
// letter and one digit.
func Password() Rule {
	return Rule{
		Required:  true,
		MinLength: 8,
		MaxLength: 100,
		Custom: func(value string) error {
			var hasLetter, hasDigit bool
			for _, r := range value {
				switch {
				case unicode.IsLetter(r):
					hasLetter = true
				case unicode.IsDigit(r):
					hasDigit = true
				}
			}
			if value != "" && (!hasLetter || !hasDigit) {
				return errors.New("must contain a letter and a digit")
			}
			return nil
		},
	}
}

// ConfirmPassword returns a rule whose custom check compares the confirmation
// field against the live password value. The getter closure reads the current
// password at validation time, so the rule stays correct as the user types.
func ConfirmPassword(password func() string) Rule {
	return Rule{
		Required: true,
		Custom: func(value string) error {
			if value != "" && value != password() {
				return errors.New("passwords do not match")
			}
			return nil
		},
	}
}

// Title returns the rule shared by todo, post and calendar title fields.
func Title() Rule {
	return Rule{Required: true, MinLength: 1, MaxLength: 100}
}

// OneOf returns a rule accepting only the listed values, for fields backed by
// a fixed choice set (priority, kanban column, theme).
func OneOf(allowed ...string) Rule {
	return Rule{
		Custom: func(value string) error {
			if value == "" {
				return nil
			}
			for _, a := range allowed {
				if value == a {
					return nil
				}
			}
			return errors.New("must be one of " + strings.Join(allowed, ", "))
		},
	}
}

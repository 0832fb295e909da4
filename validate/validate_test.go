package validate

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldRequired(t *testing.T) {
	rule := Rule{Required: true}

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"tab and newline", "\t\n", true},
		{"non-empty", "hello", false},
		{"korean text", "안녕하세요", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Field(tt.value, rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("Field(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFieldLengthBoundaries(t *testing.T) {
	rule := Rule{MinLength: 3, MaxLength: 5}

	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"below minimum", "ab", "must be at least 3 characters"},
		{"exactly minimum", "abc", ""},
		{"exactly maximum", "abcde", ""},
		{"above maximum", "abcdef", "must be at most 5 characters"},
		{"empty fails minimum", "", "must be at least 3 characters"},
		{"korean runes counted not bytes", "가나다", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Field(tt.value, rule)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Field(%q) = %v, want nil", tt.value, err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Field(%q) = %v, want %q", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFieldEmptyValueNotExempt(t *testing.T) {
	// Length and pattern checks apply to the empty string like any other
	// value; optionality lives in the rule, not in an implicit skip.
	err := Field("", Rule{MinLength: 3})
	if err == nil || err.Error() != "must be at least 3 characters" {
		t.Errorf("Field(\"\", minLength) = %v, want minLength failure", err)
	}

	err = Field("", Rule{Pattern: regexp.MustCompile(`^[a-z]+$`)})
	if err == nil || err.Error() != "invalid format" {
		t.Errorf("Field(\"\", pattern) = %v, want pattern failure", err)
	}

	// A pattern admitting the empty string keeps a field optional.
	if err := Field("", Rule{Pattern: regexp.MustCompile(`^([a-z]+)?$`)}); err != nil {
		t.Errorf("empty-admitting pattern rejected \"\": %v", err)
	}
}

func TestFieldCheckOrder(t *testing.T) {
	// "ab" against required+minLength must fail on minLength, not required.
	rule := Rule{Required: true, MinLength: 3}
	err := Field("ab", rule)
	if err == nil {
		t.Fatal("expected error for short value")
	}
	if err.Error() != "must be at least 3 characters" {
		t.Errorf("got %q, want minLength failure", err.Error())
	}

	// Empty value fails on required before any other check runs.
	err = Field("", rule)
	if err == nil || err.Error() != "this field is required" {
		t.Errorf("got %v, want required failure", err)
	}

	// Pattern failure wins over a custom check that would also fail.
	rule = Rule{
		Pattern: regexp.MustCompile(`^\d+$`),
		Custom:  func(string) error { return errors.New("custom failure") },
	}
	err = Field("abc", rule)
	if err == nil || err.Error() != "invalid format" {
		t.Errorf("got %v, want pattern failure before custom", err)
	}
}

func TestFieldCustom(t *testing.T) {
	rule := Rule{
		Custom: func(value string) error {
			if value == "forbidden" {
				return errors.New("value not allowed")
			}
			return nil
		},
	}

	if err := Field("forbidden", rule); err == nil {
		t.Error("expected custom check failure")
	}
	if err := Field("anything else", rule); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFormCollectsOnlySchemaFields(t *testing.T) {
	schema := Schema{
		"email":    {Required: true},
		"password": {Required: true, MinLength: 6},
	}
	values := map[string]string{
		"email":    "a@b.com",
		"password": "",
		"ignored":  "", // not in schema, never validated
	}

	errs := Form(values, schema)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if _, ok := errs["password"]; !ok {
		t.Error("expected an error keyed by password")
	}
	if _, ok := errs["ignored"]; ok {
		t.Error("field outside the schema must never be validated")
	}
}

func TestFormIdempotent(t *testing.T) {
	schema := Schema{
		"email":    Email(),
		"password": {Required: true, MinLength: 6},
	}
	values := map[string]string{"email": "bad-email", "password": "x"}

	first := Form(values, schema)
	second := Form(values, schema)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated validation differs (-first +second):\n%s", diff)
	}
	if len(first) != 2 {
		t.Errorf("expected errors for both fields, got %v", first)
	}
}

func TestFormLoginScenario(t *testing.T) {
	schema := Schema{
		"email":    Email(),
		"password": {Required: true, MinLength: 6},
	}

	errs := Form(map[string]string{"email": "bad-email", "password": "x"}, schema)
	if len(errs) != 2 {
		t.Fatalf("expected errors for both fields, got %v", errs)
	}

	errs = Form(map[string]string{"email": "a@b.com", "password": "abcdef"}, schema)
	if len(errs) != 0 {
		t.Fatalf("expected empty error mapping, got %v", errs)
	}
}

func TestFormSignupConfirmation(t *testing.T) {
	values := map[string]string{
		"password":        "Abcdef12",
		"confirmPassword": "different",
	}
	schema := Schema{
		"password":        Password(),
		"confirmPassword": ConfirmPassword(func() string { return values["password"] }),
	}

	errs := Form(values, schema)
	if msg, ok := errs["confirmPassword"]; !ok || msg != "passwords do not match" {
		t.Fatalf("expected mismatch error for confirmPassword, got %v", errs)
	}

	values["confirmPassword"] = "Abcdef12"
	errs = Form(values, schema)
	if _, ok := errs["confirmPassword"]; ok {
		t.Fatalf("expected confirmPassword to pass, got %v", errs)
	}
}

func TestRuleConstructors(t *testing.T) {
	if err := Field("user@example.com", Email()); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	if err := Field("not-an-email", Email()); err == nil {
		t.Error("invalid email accepted")
	}
	if err := Field("abcdefg1", Password()); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	if err := Field("lettersonly", Password()); err == nil {
		t.Error("password without digit accepted")
	}
	if err := Field("", Phone()); err != nil {
		t.Errorf("empty optional phone rejected: %v", err)
	}
	if err := Field("+821012345678", Phone()); err != nil {
		t.Errorf("valid phone rejected: %v", err)
	}
	if err := Field("not-a-number", Phone()); err == nil {
		t.Error("invalid phone accepted")
	}
	if err := Field("high", OneOf("low", "medium", "high")); err != nil {
		t.Errorf("allowed value rejected: %v", err)
	}
	if err := Field("urgent", OneOf("low", "medium", "high")); err == nil {
		t.Error("disallowed value accepted")
	}
}

package form

import (
	"context"
	"errors"
	"testing"

	"github.com/minjae-ko/playkit/validate"
)

func loginSchema() validate.Schema {
	return validate.Schema{
		"email":    validate.Email(),
		"password": {Required: true, MinLength: 6},
	}
}

func TestSubmitBlockedByValidation(t *testing.T) {
	f := New(map[string]string{"email": "bad", "password": "x"}, loginSchema(), Options{})

	called := false
	err := f.Submit(context.Background(), func(context.Context, map[string]string) error {
		called = true
		return nil
	})

	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if called {
		t.Error("onSubmit must not run when validation fails")
	}
	if len(f.Errors()) != 2 {
		t.Errorf("expected errors for both fields, got %v", f.Errors())
	}
	// Submit marks every schema field touched regardless of outcome.
	if !f.Touched("email") || !f.Touched("password") {
		t.Error("submit must mark all schema fields touched")
	}
}

func TestSubmitSuccessClearsDirty(t *testing.T) {
	f := New(map[string]string{"email": "", "password": ""}, loginSchema(), Options{})
	f.Change("email", "a@b.com")
	f.Change("password", "abcdef")

	if !f.Dirty() {
		t.Fatal("form should be dirty after changes")
	}

	var got map[string]string
	err := f.Submit(context.Background(), func(_ context.Context, values map[string]string) error {
		got = values
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if got["email"] != "a@b.com" || got["password"] != "abcdef" {
		t.Errorf("onSubmit received wrong values: %v", got)
	}
	if f.Dirty() {
		t.Error("successful submit must clear the dirty flag")
	}
}

func TestSubmitFailurePropagates(t *testing.T) {
	f := New(map[string]string{"email": "a@b.com", "password": "abcdef"}, loginSchema(), Options{})
	f.Change("password", "abcdefg")

	boom := errors.New("backend rejected")
	err := f.Submit(context.Background(), func(context.Context, map[string]string) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("submit error not propagated, got %v", err)
	}
	if !f.Dirty() {
		t.Error("failed submit must leave the form dirty")
	}
	if f.Submitting() {
		t.Error("submitting flag must clear after the callback settles")
	}
}

func TestValidateOnBlur(t *testing.T) {
	f := New(map[string]string{"email": ""}, loginSchema(), Options{ValidateOnBlur: true})

	f.Blur("email")
	if f.Error("email") == "" {
		t.Error("blur with empty required field should record an error")
	}

	f.Change("email", "a@b.com")
	f.Blur("email")
	if msg := f.Error("email"); msg != "" {
		t.Errorf("valid value should clear the error, got %q", msg)
	}
}

func TestValidateOnChangeOnlyWhenTouched(t *testing.T) {
	f := New(map[string]string{"email": ""}, loginSchema(), Options{ValidateOnChange: true})

	// The user has not left the field yet; typing must not surface errors.
	f.Change("email", "ba")
	if f.Error("email") != "" {
		t.Error("untouched field must not be validated on change")
	}

	f.Blur("email")
	f.Change("email", "still-bad")
	if f.Error("email") == "" {
		t.Error("touched field should re-validate on change")
	}

	f.Change("email", "a@b.com")
	if f.Error("email") != "" {
		t.Error("re-validation must see the freshest value")
	}
}

func TestProgrammaticSettersBypassValidation(t *testing.T) {
	f := New(map[string]string{"email": ""}, loginSchema(), Options{ValidateOnChange: true, ValidateOnBlur: true})

	f.SetFieldTouched("email", true)
	f.SetFieldValue("email", "not-an-email")
	if f.Error("email") != "" {
		t.Error("SetFieldValue must not trigger validation")
	}

	f.SetFieldError("email", "taken")
	if f.Error("email") != "taken" {
		t.Error("SetFieldError must set the message directly")
	}
	f.SetFieldError("email", "")
	if f.Error("email") != "" {
		t.Error("empty message must clear the field error")
	}

	f.SetErrors(validate.Errors{"password": "server says no"})
	if f.Error("password") != "server says no" || f.Error("email") != "" {
		t.Errorf("SetErrors must replace the mapping wholesale, got %v", f.Errors())
	}
}

func TestReset(t *testing.T) {
	initial := map[string]string{"email": "seed@b.com", "password": ""}
	f := New(initial, loginSchema(), Options{ValidateOnBlur: true})

	f.Change("email", "other@b.com")
	f.Blur("password")
	f.Reset(nil)

	if f.Value("email") != "seed@b.com" {
		t.Errorf("reset should restore initial values, got %q", f.Value("email"))
	}
	if f.Dirty() || f.Touched("password") || len(f.Errors()) != 0 {
		t.Error("reset must clear dirty, touched and errors")
	}

	f.Reset(map[string]string{"email": "new@b.com", "password": "abcdef"})
	if f.Value("email") != "new@b.com" {
		t.Errorf("reset with values should adopt them, got %q", f.Value("email"))
	}
	// The replacement values become the new baseline for later resets.
	f.Change("email", "changed@b.com")
	f.Reset(nil)
	if f.Value("email") != "new@b.com" {
		t.Errorf("reset baseline not updated, got %q", f.Value("email"))
	}
}

func TestValidIsOptimistic(t *testing.T) {
	f := New(map[string]string{"email": "a@b.com", "password": "abcdef"}, loginSchema(), Options{})

	// No validation pass has run, but all required fields are filled.
	if !f.Valid() {
		t.Error("filled required fields should report valid before validation")
	}

	f.Change("password", "")
	if f.Valid() {
		t.Error("empty required field must report invalid")
	}

	f.Change("password", "abcdef")
	f.SetFieldError("email", "taken")
	if f.Valid() {
		t.Error("recorded error must report invalid")
	}
}

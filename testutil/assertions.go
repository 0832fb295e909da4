package testutil

import (
	"testing"

	"github.com/minjae-ko/playkit/store"
)

// AssertTodoCount checks that the slice contains the expected number of
// todos.
func AssertTodoCount(t *testing.T, todos []store.Todo, expected int, context ...string) {
	t.Helper()
	if len(todos) != expected {
		ctx := ""
		if len(context) > 0 {
			ctx = " " + context[0]
		}
		t.Errorf("expected %d todos%s, got %d", expected, ctx, len(todos))
	}
}

// AssertTodoExists verifies that a todo with the given id is in the slice.
func AssertTodoExists(t *testing.T, todos []store.Todo, id string) {
	t.Helper()
	for _, todo := range todos {
		if todo.ID == id {
			return
		}
	}
	t.Errorf("todo %s not found in results", id)
}

// AssertTodoNotExists verifies that no todo with the given id is in the
// slice.
func AssertTodoNotExists(t *testing.T, todos []store.Todo, id string) {
	t.Helper()
	for _, todo := range todos {
		if todo.ID == id {
			t.Errorf("todo %s should not be in results", id)
			return
		}
	}
}

// RequireNoError fails the test immediately on error.
func RequireNoError(t *testing.T, err error, context ...string) {
	t.Helper()
	if err != nil {
		ctx := ""
		if len(context) > 0 {
			ctx = context[0] + ": "
		}
		t.Fatalf("%sunexpected error: %v", ctx, err)
	}
}

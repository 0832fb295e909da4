package store

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestColumnsGroupedAndSorted(t *testing.T) {
	s := NewBoardStore(newTestClient(t, http.NewServeMux()), &fakeSession{signedIn: true}, nil)
	s.col.replace([]Card{
		{ID: "1", Column: ColumnTodo, Position: 2},
		{ID: "2", Column: ColumnTodo, Position: 1},
		{ID: "3", Column: ColumnDone, Position: 1},
	})

	cols := s.Columns()
	todo := cols[ColumnTodo]
	if len(todo) != 2 || todo[0].ID != "2" || todo[1].ID != "1" {
		t.Errorf("todo column not sorted by position: %v", todo)
	}
	if len(cols[ColumnDone]) != 1 {
		t.Errorf("done column wrong: %v", cols[ColumnDone])
	}
	if len(cols[ColumnDoing]) != 0 {
		t.Errorf("doing column should be empty: %v", cols[ColumnDoing])
	}
}

func TestMoveReplacesBoard(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["column"] != ColumnDoing {
			t.Errorf("move payload column = %v", body["column"])
		}
		// Server returns the renumbered board.
		_ = json.NewEncoder(w).Encode([]Card{
			{ID: "1", Column: ColumnDoing, Position: 1},
			{ID: "2", Column: ColumnTodo, Position: 1},
		})
	})
	s := NewBoardStore(newTestClient(t, handler), &fakeSession{signedIn: true}, nil)
	s.col.replace([]Card{
		{ID: "1", Column: ColumnTodo, Position: 1},
		{ID: "2", Column: ColumnTodo, Position: 2},
	})

	if err := s.Move(context.Background(), "1", ColumnDoing, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}

	moved, ok := s.col.Get("1")
	if !ok || moved.Column != ColumnDoing {
		t.Errorf("cache not replaced with renumbered board: %+v", moved)
	}
	if remaining, _ := s.col.Get("2"); remaining.Position != 1 {
		t.Errorf("displaced card not renumbered: %+v", remaining)
	}
}

package store

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func seededEventStore(t *testing.T, events []Event) *EventStore {
	t.Helper()
	s := NewEventStore(newTestClient(t, http.NewServeMux()), &fakeSession{signedIn: true}, nil)
	s.col.replace(events)
	return s
}

func TestEventsOn(t *testing.T) {
	s := seededEventStore(t, []Event{
		{ID: "a", Title: "standup", StartAt: day(t, "2026-03-02T09:00:00Z"), EndAt: day(t, "2026-03-02T09:15:00Z")},
		{ID: "b", Title: "review", StartAt: day(t, "2026-03-02T15:00:00Z"), EndAt: day(t, "2026-03-02T16:00:00Z")},
		{ID: "c", Title: "offsite", StartAt: day(t, "2026-03-03T09:00:00Z"), EndAt: day(t, "2026-03-04T18:00:00Z")},
	})

	got := s.EventsOn(day(t, "2026-03-02T12:00:00Z"))
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("EventsOn returned %v", got)
	}

	// Multi-day events appear on every day they overlap.
	got = s.EventsOn(day(t, "2026-03-04T00:30:00Z"))
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("multi-day overlap missed: %v", got)
	}
}

func TestEventsBetweenSortedByStart(t *testing.T) {
	s := seededEventStore(t, []Event{
		{ID: "late", StartAt: day(t, "2026-03-05T10:00:00Z"), EndAt: day(t, "2026-03-05T11:00:00Z")},
		{ID: "early", StartAt: day(t, "2026-03-01T10:00:00Z"), EndAt: day(t, "2026-03-01T11:00:00Z")},
		{ID: "outside", StartAt: day(t, "2026-04-01T10:00:00Z"), EndAt: day(t, "2026-04-01T11:00:00Z")},
	})

	got := s.EventsBetween(day(t, "2026-03-01T00:00:00Z"), day(t, "2026-03-08T00:00:00Z"))
	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Errorf("EventsBetween returned %v", got)
	}
}

func TestZeroDurationEventMatchesItsDay(t *testing.T) {
	reminder := day(t, "2026-03-02T09:00:00Z")
	s := seededEventStore(t, []Event{
		{ID: "reminder", Title: "call mom", StartAt: reminder, EndAt: reminder},
	})

	got := s.EventsOn(reminder)
	if len(got) != 1 || got[0].ID != "reminder" {
		t.Errorf("point event missed on its own day: %v", got)
	}

	got = s.EventsBetween(day(t, "2026-03-02T08:00:00Z"), day(t, "2026-03-02T10:00:00Z"))
	if len(got) != 1 {
		t.Errorf("point event missed inside a containing range: %v", got)
	}

	if got = s.EventsOn(day(t, "2026-03-03T00:00:00Z")); len(got) != 0 {
		t.Errorf("point event leaked onto the next day: %v", got)
	}
}

func TestEventEndingAtRangeStartExcluded(t *testing.T) {
	s := seededEventStore(t, []Event{
		{ID: "late-show", StartAt: day(t, "2026-03-02T23:00:00Z"), EndAt: day(t, "2026-03-03T00:00:00Z")},
	})

	if got := s.EventsOn(day(t, "2026-03-03T12:00:00Z")); len(got) != 0 {
		t.Errorf("event ending at midnight appeared on the next day: %v", got)
	}
	if got := s.EventsOn(day(t, "2026-03-02T12:00:00Z")); len(got) != 1 {
		t.Errorf("event missing from its own day: %v", got)
	}
}

func TestEventAddAndRemove(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var input EventInput
			_ = json.NewDecoder(r.Body).Decode(&input)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Event{ID: "ev-1", Title: input.Title, StartAt: input.StartAt, EndAt: input.EndAt})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	s := NewEventStore(newTestClient(t, handler), &fakeSession{signedIn: true}, nil)

	created, err := s.Add(context.Background(), EventInput{
		Title:   "lunch",
		StartAt: day(t, "2026-03-02T12:00:00Z"),
		EndAt:   day(t, "2026-03-02T13:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.ID != "ev-1" || s.col.Len() != 1 {
		t.Errorf("add did not append the server entity: %+v", created)
	}

	if err := s.Remove(context.Background(), "ev-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.col.Len() != 0 {
		t.Error("remove did not drop the entity")
	}
}

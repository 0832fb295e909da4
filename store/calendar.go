package store

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/minjae-ko/playkit/client"
)

// Event is one calendar entry. AllDay events ignore the time-of-day parts of
// StartAt and EndAt.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityID implements Entity.
func (e Event) EntityID() string { return e.ID }

// EventInput carries the client-owned fields of a new event.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	AllDay      bool      `json:"all_day"`
}

// EventPatch is a partial update; nil fields are left untouched server-side.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Color       *string    `json:"color,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	AllDay      *bool      `json:"all_day,omitempty"`
}

// EventStore caches the signed-in user's calendar events.
type EventStore struct {
	col     Collection[Event]
	api     *client.Client
	session Session
	logger  *slog.Logger
}

// NewEventStore creates a store over the REST client. logger may be nil.
func NewEventStore(api *client.Client, session Session, logger *slog.Logger) *EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{api: api, session: session, logger: logger}
}

// Fetch replaces the cached list; silent no-op when signed out.
func (s *EventStore) Fetch(ctx context.Context) error {
	if !s.session.SignedIn() {
		s.logger.Debug("event fetch skipped, not signed in")
		return nil
	}
	var events []Event
	if err := s.api.Get(ctx, "/events", &events); err != nil {
		return s.col.fail(err)
	}
	s.col.replace(events)
	return nil
}

// Add creates an event and appends the server-returned entity.
func (s *EventStore) Add(ctx context.Context, input EventInput) (*Event, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var created Event
	if err := s.api.Post(ctx, "/events", input, &created); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.append(created)
	return &created, nil
}

// Update patches the matching cache entry after server confirmation.
func (s *EventStore) Update(ctx context.Context, id string, patch EventPatch) (*Event, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var updated Event
	if err := s.api.Patch(ctx, "/events/"+id, patch, &updated); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.patch(updated)
	return &updated, nil
}

// Remove deletes the event and drops it from the cache.
func (s *EventStore) Remove(ctx context.Context, id string) error {
	if !s.session.SignedIn() {
		return ErrNotSignedIn
	}
	if err := s.api.Delete(ctx, "/events/"+id); err != nil {
		return s.col.fail(err)
	}
	s.col.remove(id)
	return nil
}

// Events returns a copy of the cached list.
func (s *EventStore) Events() []Event { return s.col.Items() }

// Err returns the last recorded error message.
func (s *EventStore) Err() string { return s.col.Err() }

// EventsOn returns the cached events overlapping the calendar day of t, in
// start order. Pure read; may be stale between fetches.
func (s *EventStore) EventsOn(t time.Time) []Event {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	return s.EventsBetween(dayStart, dayEnd)
}

// EventsBetween returns the cached events overlapping [from, to), sorted by
// start time. Range boundaries are half-open, so an event ending exactly at
// from is excluded; a zero-duration event counts as overlapping any range
// containing its instant.
func (s *EventStore) EventsBetween(from, to time.Time) []Event {
	var out []Event
	for _, ev := range s.col.Items() {
		overlaps := ev.StartAt.Before(to) && ev.EndAt.After(from)
		if !overlaps && ev.StartAt.Equal(ev.EndAt) {
			overlaps = !ev.StartAt.Before(from) && ev.StartAt.Before(to)
		}
		if overlaps {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

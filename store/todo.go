package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/minjae-ko/playkit/client"
)

// Priorities accepted by the backend.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Todo is one entry of the todos collection, ids and timestamps assigned by
// the server.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityID implements Entity.
func (t Todo) EntityID() string { return t.ID }

// TodoInput carries the client-owned fields of a new todo.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// TodoPatch is a partial update; nil fields are omitted from the request so
// the backend only sees what changed.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TodoStats are derived counts over the cached list; they never trigger
// network activity and can be stale between fetches.
type TodoStats struct {
	Total      int
	Completed  int
	Pending    int
	ByPriority map[string]int
}

// TodoStore caches the signed-in user's todos.
type TodoStore struct {
	col     Collection[Todo]
	api     *client.Client
	session Session
	logger  *slog.Logger
}

// NewTodoStore creates a store over the REST client. logger may be nil.
func NewTodoStore(api *client.Client, session Session, logger *slog.Logger) *TodoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoStore{api: api, session: session, logger: logger}
}

// Fetch replaces the cached list with the server's. Without a signed-in
// session it is a silent no-op; on failure the existing list is untouched
// and the error is recorded.
func (s *TodoStore) Fetch(ctx context.Context) error {
	if !s.session.SignedIn() {
		s.logger.Debug("todo fetch skipped, not signed in")
		return nil
	}
	var todos []Todo
	if err := s.api.Get(ctx, "/todos", &todos); err != nil {
		return s.col.fail(err)
	}
	s.col.replace(todos)
	return nil
}

// Add creates a todo and appends the server-returned entity to the cache.
func (s *TodoStore) Add(ctx context.Context, input TodoInput) (*Todo, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var created Todo
	if err := s.api.Post(ctx, "/todos", input, &created); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.append(created)
	return &created, nil
}

// Update sends only the changed fields and patches the matching cache entry
// in place once the server confirms.
func (s *TodoStore) Update(ctx context.Context, id string, patch TodoPatch) (*Todo, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var updated Todo
	if err := s.api.Patch(ctx, "/todos/"+id, patch, &updated); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.patch(updated)
	return &updated, nil
}

// Remove deletes the todo and filters it out of the cache by id.
func (s *TodoStore) Remove(ctx context.Context, id string) error {
	if !s.session.SignedIn() {
		return ErrNotSignedIn
	}
	if err := s.api.Delete(ctx, "/todos/"+id); err != nil {
		return s.col.fail(err)
	}
	s.col.remove(id)
	return nil
}

// Toggle flips completion through its own endpoint, keeping the payload
// minimal compared to a full Update.
func (s *TodoStore) Toggle(ctx context.Context, id string) (*Todo, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var updated Todo
	if err := s.api.Post(ctx, "/todos/"+id+"/toggle", nil, &updated); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.patch(updated)
	return &updated, nil
}

// Todos returns a copy of the cached list.
func (s *TodoStore) Todos() []Todo { return s.col.Items() }

// Get returns the cached todo with the given id.
func (s *TodoStore) Get(id string) (Todo, bool) { return s.col.Get(id) }

// Len returns the number of cached todos.
func (s *TodoStore) Len() int { return s.col.Len() }

// Err returns the last recorded error message.
func (s *TodoStore) Err() string { return s.col.Err() }

// Stats computes counts over the cached list.
func (s *TodoStore) Stats() TodoStats {
	stats := TodoStats{ByPriority: make(map[string]int)}
	for _, todo := range s.col.Items() {
		stats.Total++
		if todo.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if todo.Priority != "" {
			stats.ByPriority[todo.Priority]++
		}
	}
	return stats
}

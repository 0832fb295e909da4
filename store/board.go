package store

import (
	"context"
	"log/slog"
	"sort"

	"github.com/minjae-ko/playkit/client"
)

// Kanban columns, in board order.
const (
	ColumnTodo  = "todo"
	ColumnDoing = "doing"
	ColumnDone  = "done"
)

// Card is one kanban card. Position orders cards within a column.
type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Column      string `json:"column"`
	Position    int    `json:"position"`
}

// EntityID implements Entity.
func (c Card) EntityID() string { return c.ID }

// CardInput carries the client-owned fields of a new card; the server
// assigns the position at the end of the column.
type CardInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Column      string `json:"column,omitempty"`
}

// CardPatch is a partial update of a card's own fields; moving between
// columns goes through Move.
type CardPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// BoardStore caches the kanban board's cards.
type BoardStore struct {
	col     Collection[Card]
	api     *client.Client
	session Session
	logger  *slog.Logger
}

// NewBoardStore creates a store over the REST client. logger may be nil.
func NewBoardStore(api *client.Client, session Session, logger *slog.Logger) *BoardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardStore{api: api, session: session, logger: logger}
}

// Fetch replaces the cached cards; silent no-op when signed out.
func (s *BoardStore) Fetch(ctx context.Context) error {
	if !s.session.SignedIn() {
		s.logger.Debug("board fetch skipped, not signed in")
		return nil
	}
	var cards []Card
	if err := s.api.Get(ctx, "/board/cards", &cards); err != nil {
		return s.col.fail(err)
	}
	s.col.replace(cards)
	return nil
}

// Add creates a card and appends the server-returned entity.
func (s *BoardStore) Add(ctx context.Context, input CardInput) (*Card, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var created Card
	if err := s.api.Post(ctx, "/board/cards", input, &created); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.append(created)
	return &created, nil
}

// Update patches a card's own fields after server confirmation.
func (s *BoardStore) Update(ctx context.Context, id string, patch CardPatch) (*Card, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var updated Card
	if err := s.api.Patch(ctx, "/board/cards/"+id, patch, &updated); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.patch(updated)
	return &updated, nil
}

// Move places the card into a column at the given position. The server
// renumbers displaced cards and returns the full board, which replaces the
// cache so every affected position lands at once.
func (s *BoardStore) Move(ctx context.Context, id, column string, position int) error {
	if !s.session.SignedIn() {
		return ErrNotSignedIn
	}
	var cards []Card
	err := s.api.Post(ctx, "/board/cards/"+id+"/move", map[string]any{
		"column":   column,
		"position": position,
	}, &cards)
	if err != nil {
		return s.col.fail(err)
	}
	s.col.replace(cards)
	return nil
}

// Remove deletes the card and drops it from the cache.
func (s *BoardStore) Remove(ctx context.Context, id string) error {
	if !s.session.SignedIn() {
		return ErrNotSignedIn
	}
	if err := s.api.Delete(ctx, "/board/cards/"+id); err != nil {
		return s.col.fail(err)
	}
	s.col.remove(id)
	return nil
}

// Cards returns a copy of the cached list.
func (s *BoardStore) Cards() []Card { return s.col.Items() }

// Err returns the last recorded error message.
func (s *BoardStore) Err() string { return s.col.Err() }

// Columns groups the cached cards by column, each group sorted by position.
func (s *BoardStore) Columns() map[string][]Card {
	out := make(map[string][]Card)
	for _, card := range s.col.Items() {
		out[card.Column] = append(out[card.Column], card)
	}
	for column := range out {
		cards := out[column]
		sort.Slice(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	}
	return out
}

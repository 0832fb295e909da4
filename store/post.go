package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/minjae-ko/playkit/client"
)

// Post is one entry of the community board.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EntityID implements Entity.
func (p Post) EntityID() string { return p.ID }

// PostInput carries the client-owned fields of a new post.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostPatch is a partial update.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// PostStore caches the posts collection. Posts are readable by everyone but
// the collection still loads per-session, so the signed-in gate applies the
// same way as the other stores.
type PostStore struct {
	col     Collection[Post]
	api     *client.Client
	session Session
	logger  *slog.Logger
}

// NewPostStore creates a store over the REST client. logger may be nil.
func NewPostStore(api *client.Client, session Session, logger *slog.Logger) *PostStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostStore{api: api, session: session, logger: logger}
}

// Fetch replaces the cached list; silent no-op when signed out.
func (s *PostStore) Fetch(ctx context.Context) error {
	if !s.session.SignedIn() {
		s.logger.Debug("post fetch skipped, not signed in")
		return nil
	}
	var posts []Post
	if err := s.api.Get(ctx, "/posts", &posts); err != nil {
		return s.col.fail(err)
	}
	s.col.replace(posts)
	return nil
}

// Add creates a post and appends the server-returned entity.
func (s *PostStore) Add(ctx context.Context, input PostInput) (*Post, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var created Post
	if err := s.api.Post(ctx, "/posts", input, &created); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.append(created)
	return &created, nil
}

// Update patches the matching cache entry after server confirmation.
func (s *PostStore) Update(ctx context.Context, id string, patch PostPatch) (*Post, error) {
	if !s.session.SignedIn() {
		return nil, ErrNotSignedIn
	}
	var updated Post
	if err := s.api.Patch(ctx, "/posts/"+id, patch, &updated); err != nil {
		return nil, s.col.fail(err)
	}
	s.col.patch(updated)
	return &updated, nil
}

// Remove deletes the post and drops it from the cache.
func (s *PostStore) Remove(ctx context.Context, id string) error {
	if !s.session.SignedIn() {
		return ErrNotSignedIn
	}
	if err := s.api.Delete(ctx, "/posts/"+id); err != nil {
		return s.col.fail(err)
	}
	s.col.remove(id)
	return nil
}

// Posts returns a copy of the cached list.
func (s *PostStore) Posts() []Post { return s.col.Items() }

// Err returns the last recorded error message.
func (s *PostStore) Err() string { return s.col.Err() }

// ByAuthor returns the cached posts written by the given author, preserving
// list order. Pure read over the cache.
func (s *PostStore) ByAuthor(authorID string) []Post {
	var out []Post
	for _, post := range s.col.Items() {
		if post.AuthorID == authorID {
			out = append(out, post)
		}
	}
	return out
}

package practice

import "time"

// Database models. IDs are UUID strings assigned on create; the JSON shapes
// returned by the handlers mirror what the production backend emits, so the
// client packages can run against either.

// User is an account row.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Todo is one todo row owned by a user.
type Todo struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Title       string
	Description string
	Priority    string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type todoJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Todo) api() todoJSON {
	return todoJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Event is one calendar row owned by a user.
type Event struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Title       string
	Description string
	Color       string
	StartAt     time.Time
	EndAt       time.Time
	AllDay      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type eventJSON struct {
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

func (e Event) api() eventJSON {
	return eventJSON{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		AllDay:      e.AllDay,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Post is one community-board row. Posts are listed across users.
type Post struct {
	ID         string `gorm:"primaryKey"`
	AuthorID   string `gorm:"index"`
	AuthorName string
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type postJSON struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p Post) api() postJSON {
	return postJSON{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Card is one kanban card owned by a user. "column" is an SQL keyword, so
// the database column is named lane.
type Card struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Title       string
	Description string
	Lane        string `gorm:"column:lane"`
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type cardJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Column      string `json:"column"`
	Position    int    `json:"position"`
}

func (c Card) api() cardJSON {
	return cardJSON{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Column:      c.Lane,
		Position:    c.Position,
	}
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u User) api() userJSON {
	return userJSON{ID: u.ID, Email: u.Email, Name: u.Name}
}

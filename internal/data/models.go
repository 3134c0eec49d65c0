package data

import (
	"time"
)

// Tag is a label that can be attached to wiki pages.
type Tag struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Category groups wiki pages. Every page belongs to exactly one category.
type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// WikiPage is a single wiki page.
type WikiPage struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	CategoryID string    `db:"category_id" json:"categoryId"`
	AuthorID   *int64    `db:"author_id" json:"authorId,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
	Tags       []string  `db:"-" json:"tags"`
}

// User is an account that can authenticate against the API.
// Password holds the hash and is never serialized.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Log is the audit record of one request.
type Log struct {
	ID          string     `db:"id" json:"id"`
	Method      string     `db:"method" json:"method"`
	Route       string     `db:"route" json:"route"`
	UserID      *int64     `db:"user_id" json:"userId,omitempty"`
	Status      int        `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	FinalizedAt *time.Time `db:"finalized_at" json:"finalizedAt,omitempty"`
	Entries     []LogEntry `db:"-" json:"entries,omitempty"`
}

// LogEntry is a leveled message attached to a Log in insertion order.
type LogEntry struct {
	LogID     string    `db:"log_id" json:"-"`
	Position  int       `db:"position" json:"position"`
	Level     string    `db:"level" json:"level"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TagPatch lists the tag fields an update may change; nil means unchanged.
type TagPatch struct {
	Name *string
}

// CategoryPatch lists the category fields an update may change.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// WikiPagePatch lists the page fields an update may change. A non-nil Tags
// replaces the page's whole tag set.
type WikiPagePatch struct {
	Title      *string
	Content    *string
	CategoryID *string
	Tags       *[]string
}

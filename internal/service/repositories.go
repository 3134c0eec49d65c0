package service

import (
	"context"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/query"
)

// TagRepository defines the interface for database operations on tags.
type TagRepository = data.Repository[data.Tag, string, data.TagPatch]

// CategoryRepository defines the interface for database operations on categories.
type CategoryRepository = data.Repository[data.Category, string, data.CategoryPatch]

// PageRepository defines the interface for database operations on pages.
type PageRepository interface {
	data.Repository[data.WikiPage, string, data.WikiPagePatch]
	ListFiltered(ctx context.Context, opts query.Options, filter data.PageFilter) ([]data.WikiPage, error)
}

// UserRepository defines the interface for database operations on users.
type UserRepository interface {
	List(ctx context.Context, opts query.Options) ([]data.User, error)
	GetByID(ctx context.Context, id int64) (*data.User, error)
	GetByEmail(ctx context.Context, email string) (*data.User, error)
	Create(ctx context.Context, user *data.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	Discard(ctx context.Context, id int64) error
}

// LogRepository defines the read side of the audit log.
type LogRepository interface {
	List(ctx context.Context, opts query.Options) ([]data.Log, error)
	GetByID(ctx context.Context, id string) (*data.Log, error)
}

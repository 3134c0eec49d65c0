package data

import (
	"context"

	"go-wiki-api/internal/query"

	"github.com/jmoiron/sqlx"
)

// TagRepository stores tags.
type TagRepository struct {
	store *Store
}

func NewTagRepository(store *Store) *TagRepository {
	return &TagRepository{store: store}
}

func (r *TagRepository) List(ctx context.Context, opts query.Options) ([]Tag, error) {
	return list[Tag](ctx, r.store, query.Tag, opts)
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*Tag, error) {
	return getByID[Tag](ctx, r.store.db, r.store, query.Tag, id)
}

func (r *TagRepository) Create(ctx context.Context, tag *Tag) error {
	b := r.store.sb.Insert("tags").Columns("id", "name").Values(tag.ID, tag.Name)
	if _, err := execContext(ctx, r.store.db, b); err != nil {
		return HandleSQLError(err, query.Tag)
	}
	return nil
}

// Update applies patch atomically and returns the stored tag.
func (r *TagRepository) Update(ctx context.Context, id string, patch TagPatch) (*Tag, error) {
	var updated *Tag
	err := r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getByID[Tag](ctx, tx, r.store, query.Tag, id)
		if err != nil {
			return err
		}
		if patch.Name == nil {
			updated = current
			return nil
		}
		b := r.store.sb.Update("tags").Set("name", *patch.Name).Where("id = ?", id)
		if _, err := execContext(ctx, tx, b); err != nil {
			return HandleSQLError(err, query.Tag)
		}
		current.Name = *patch.Name
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete is reserved; tags cannot be deleted.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	return ErrNotImplemented
}

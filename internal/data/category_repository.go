package data

import (
	"context"

	"go-wiki-api/internal/query"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository stores categories.
type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) List(ctx context.Context, opts query.Options) ([]Category, error) {
	return list[Category](ctx, r.store, query.Category, opts)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	return getByID[Category](ctx, r.store.db, r.store, query.Category, id)
}

func (r *CategoryRepository) Create(ctx context.Context, category *Category) error {
	b := r.store.sb.Insert("categories").
		Columns("id", "name", "description").
		Values(category.ID, category.Name, category.Description)
	if _, err := execContext(ctx, r.store.db, b); err != nil {
		return HandleSQLError(err, query.Category)
	}
	return nil
}

// Update changes only the fields set in patch, in a single transaction.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch CategoryPatch) (*Category, error) {
	var updated *Category
	err := r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getByID[Category](ctx, tx, r.store, query.Category, id)
		if err != nil {
			return err
		}
		set := map[string]interface{}{}
		if patch.Name != nil {
			set["name"] = *patch.Name
			current.Name = *patch.Name
		}
		if patch.Description != nil {
			set["description"] = *patch.Description
			current.Description = *patch.Description
		}
		updated = current
		if len(set) == 0 {
			return nil
		}
		b := r.store.sb.Update("categories").SetMap(set).Where("id = ?", id)
		if _, err := execContext(ctx, tx, b); err != nil {
			return HandleSQLError(err, query.Category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete is reserved; categories cannot be deleted.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return ErrNotImplemented
}

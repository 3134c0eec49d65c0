//go:build integration

package data

import (
	"context"
	"fmt"
	"testing"

	"go-wiki-api/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestStore(t))

	tag := &Tag{ID: "vendor", Name: "Vendor"}
	require.NoError(t, repo.Create(ctx, tag))

	got, err := repo.GetByID(ctx, "vendor")
	require.NoError(t, err)
	assert.Equal(t, *tag, *got)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagRepositoryCreateConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestStore(t))
	require.NoError(t, repo.Create(ctx, &Tag{ID: "vendor", Name: "Vendor"}))

	tests := []struct {
		name  string
		tag   Tag
		field string
	}{
		{"duplicate id", Tag{ID: "vendor", Name: "Other"}, "id"},
		{"duplicate name", Tag{ID: "other", Name: "Vendor"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, &tt.tag)
			require.ErrorIs(t, err, ErrConflict)

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "tag", conflict.Entity)
			assert.Equal(t, tt.field, conflict.Field)
		})
	}
}

func TestTagRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestStore(t))
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Create(ctx, &Tag{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Tag %d", i)}))
	}
	require.NoError(t, repo.Create(ctx, &Tag{ID: "vendor", Name: "Vendor"}))

	t.Run("empty result is not an error", func(t *testing.T) {
		tags, err := repo.List(ctx, query.Options{Search: "nothing matches"})
		require.NoError(t, err)
		assert.NotNil(t, tags)
		assert.Empty(t, tags)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		tags, err := repo.List(ctx, query.Options{Search: "VEN"})
		require.NoError(t, err)
		assert.Equal(t, []Tag{{ID: "vendor", Name: "Vendor"}}, tags)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		tags, err := repo.List(ctx, query.Options{Search: "%"})
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("pages are bounded and disjoint", func(t *testing.T) {
		order := &query.Order{Field: "id", Direction: query.Asc}
		seen := map[string]bool{}
		var all []string
		for page := 0; page < 3; page++ {
			tags, err := repo.List(ctx, query.Options{
				Pagination: &query.Pagination{Page: page, PageSize: 3},
				Order:      order,
			})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(tags), 3)
			for _, tag := range tags {
				assert.False(t, seen[tag.ID], "tag %s returned on two pages", tag.ID)
				seen[tag.ID] = true
				all = append(all, tag.ID)
			}
		}
		assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "vendor"}, all)
	})

	t.Run("singleton and repeated id filters agree", func(t *testing.T) {
		single, err := repo.List(ctx, query.Options{IDs: []string{"t3"}})
		require.NoError(t, err)
		multi, err := repo.List(ctx, query.Options{IDs: []string{"t3", "t3"}})
		require.NoError(t, err)
		assert.Equal(t, single, multi)
		assert.Len(t, single, 1)
	})

	t.Run("id filter with order", func(t *testing.T) {
		tags, err := repo.List(ctx, query.Options{
			IDs:   []string{"t1", "vendor", "t5"},
			Order: &query.Order{Field: "name", Direction: query.Desc},
		})
		require.NoError(t, err)
		require.Len(t, tags, 3)
		assert.Equal(t, "vendor", tags[0].ID)
		assert.Equal(t, "t5", tags[1].ID)
		assert.Equal(t, "t1", tags[2].ID)
	})

	t.Run("invalid pagination never reaches the store", func(t *testing.T) {
		_, err := repo.List(ctx, query.Options{Pagination: &query.Pagination{PageSize: 0}})
		assert.ErrorIs(t, err, query.ErrInvalidQuery)
	})
}

func TestTagRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestStore(t))
	require.NoError(t, repo.Create(ctx, &Tag{ID: "vendor", Name: "Vendor"}))
	require.NoError(t, repo.Create(ctx, &Tag{ID: "other", Name: "Other"}))

	name := "Supplier"
	updated, err := repo.Update(ctx, "vendor", TagPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, Tag{ID: "vendor", Name: "Supplier"}, *updated)

	unchanged, err := repo.Update(ctx, "vendor", TagPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Supplier", unchanged.Name)

	_, err = repo.Update(ctx, "missing", TagPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	taken := "Other"
	_, err = repo.Update(ctx, "vendor", TagPatch{Name: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.GetByID(ctx, "vendor")
	require.NoError(t, err)
	assert.Equal(t, "Supplier", got.Name)
}

func TestTagRepositoryDeleteIsReserved(t *testing.T) {
	repo := NewTagRepository(newTestStore(t))
	assert.ErrorIs(t, repo.Delete(context.Background(), "vendor"), ErrNotImplemented)
}

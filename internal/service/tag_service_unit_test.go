//go:build unit

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-wiki-api/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the name as given", func(t *testing.T) {
		for _, name := range []string{"C<T> generics", "a<b", "<b>Vendor</b> &amp; Co", " padded "} {
			repo := &mockTagRepository{}
			svc := NewTagService(repo, nil, CacheOptions{})

			tag, err := svc.Create(ctx, "vendor", name)
			require.NoError(t, err)
			assert.Equal(t, name, tag.Name)
			assert.Equal(t, 1, repo.createCalled)
		}
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		repo := &mockTagRepository{}
		svc := NewTagService(repo, nil, CacheOptions{})

		_, err := svc.Create(ctx, "vendor", " \t ")
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, "name", inputErr.Field)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, repo.createCalled)
	})

	t.Run("rejects a blank id", func(t *testing.T) {
		svc := NewTagService(&mockTagRepository{}, nil, CacheOptions{})
		_, err := svc.Create(ctx, "  ", "Vendor")
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, "id", inputErr.Field)
	})

	t.Run("passes conflicts through", func(t *testing.T) {
		repo := &mockTagRepository{createFunc: func(*data.Tag) error {
			return &data.ConflictError{Entity: "tag", Field: "id"}
		}}
		svc := NewTagService(repo, nil, CacheOptions{})

		_, err := svc.Create(ctx, "vendor", "Vendor")
		assert.ErrorIs(t, err, data.ErrConflict)
	})
}

func TestTagService_GetIsCached(t *testing.T) {
	ctx := context.Background()
	repo := &mockTagRepository{getByIDFunc: func(id string) (*data.Tag, error) {
		return &data.Tag{ID: id, Name: "Vendor"}, nil
	}}
	svc := NewTagService(repo, newTestCache(t), CacheOptions{TTL: time.Minute})

	for i := 0; i < 3; i++ {
		tag, err := svc.Get(ctx, "vendor")
		require.NoError(t, err)
		assert.Equal(t, "Vendor", tag.Name)
	}
	assert.Equal(t, 1, repo.getByIDCalled)
}

func TestTagService_UpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	name := "Vendor"
	repo := &mockTagRepository{
		getByIDFunc: func(id string) (*data.Tag, error) {
			return &data.Tag{ID: id, Name: name}, nil
		},
		updateFunc: func(id string, patch data.TagPatch) (*data.Tag, error) {
			name = *patch.Name
			return &data.Tag{ID: id, Name: name}, nil
		},
	}
	svc := NewTagService(repo, newTestCache(t), CacheOptions{TTL: time.Minute})

	_, err := svc.Get(ctx, "vendor")
	require.NoError(t, err)

	newName := "Supplier <EU>"
	updated, err := svc.Update(ctx, "vendor", data.TagPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, newName, *repo.lastPatch.Name)

	got, err := svc.Get(ctx, "vendor")
	require.NoError(t, err)
	assert.Equal(t, newName, got.Name)
	assert.Equal(t, 2, repo.getByIDCalled)
}

func TestTagService_CacheFailuresFallBackToRepository(t *testing.T) {
	repo := &mockTagRepository{getByIDFunc: func(id string) (*data.Tag, error) {
		return &data.Tag{ID: id, Name: "Vendor"}, nil
	}}
	svc := NewTagService(repo, failingCache{}, CacheOptions{TTL: time.Minute})

	tag, err := svc.Get(context.Background(), "vendor")
	require.NoError(t, err)
	assert.Equal(t, "vendor", tag.ID)
}

func TestTagService_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &mockTagRepository{}
	svc := NewTagService(repo, newTestCache(t), CacheOptions{TTL: time.Minute})

	_, err := svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, data.ErrNotFound))
	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, data.ErrNotFound))
	assert.Equal(t, 2, repo.getByIDCalled)
}

func TestTagService_DeleteIsReserved(t *testing.T) {
	svc := NewTagService(&mockTagRepository{}, nil, CacheOptions{})
	assert.ErrorIs(t, svc.Delete(context.Background(), "vendor"), data.ErrNotImplemented)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("create sanitizes name and description", func(t *testing.T) {
		repo := &mockCategoryRepository{}
		svc := NewCategoryService(repo, nil, CacheOptions{})

		c, err := svc.Create(ctx, "tools", "<h1>Tools</h1>", "Hand <em>and</em> power")
		require.NoError(t, err)
		assert.Equal(t, "Tools", c.Name)
		assert.Equal(t, "Hand and power", repo.lastCreated.Description)
	})

	t.Run("update leaves absent fields alone", func(t *testing.T) {
		repo := &mockCategoryRepository{}
		svc := NewCategoryService(repo, nil, CacheOptions{})

		desc := "<p>New</p>"
		_, err := svc.Update(ctx, "tools", data.CategoryPatch{Description: &desc})
		require.NoError(t, err)
		assert.Nil(t, repo.lastPatch.Name)
		require.NotNil(t, repo.lastPatch.Description)
		assert.Equal(t, "New", *repo.lastPatch.Description)
	})

	t.Run("update rejects an empty name", func(t *testing.T) {
		svc := NewCategoryService(&mockCategoryRepository{}, nil, CacheOptions{})
		empty := "   "
		_, err := svc.Update(ctx, "tools", data.CategoryPatch{Name: &empty})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

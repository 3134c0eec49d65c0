package service

import (
	"context"

	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/query"
)

// CategoryService provides business logic for managing categories.
type CategoryService struct {
	repo  CategoryRepository
	cache *entityCache
}

func NewCategoryService(repo CategoryRepository, c cache.Cache, opts CacheOptions) *CategoryService {
	return &CategoryService{repo: repo, cache: newEntityCache(c, opts.TTL, opts.Log)}
}

func (s *CategoryService) List(ctx context.Context, opts query.Options) ([]data.Category, error) {
	return s.repo.List(ctx, opts)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*data.Category, error) {
	return fetch(ctx, s.cache, "category:"+id, func() (*data.Category, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// Create stores a new category. The name must not be blank; the
// description may be empty.
func (s *CategoryService) Create(ctx context.Context, id, name, description string) (*data.Category, error) {
	if err := requiredID(id); err != nil {
		return nil, err
	}
	name, err := requiredText("name", name)
	if err != nil {
		return nil, err
	}
	category := &data.Category{ID: id, Name: name, Description: description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch data.CategoryPatch) (*data.Category, error) {
	if patch.Name != nil {
		name, err := requiredText("name", *patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	category, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, "category:"+id)
	return category, nil
}

// Delete is reserved and always fails with data.ErrNotImplemented.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

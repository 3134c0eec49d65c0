package service

import (
	"context"
	"time"

	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/query"
)

// TagService provides business logic for managing tags.
type TagService struct {
	repo  TagRepository
	cache *entityCache
}

func NewTagService(repo TagRepository, c cache.Cache, opts CacheOptions) *TagService {
	return &TagService{repo: repo, cache: newEntityCache(c, opts.TTL, opts.Log)}
}

// CacheOptions configure how services cache single-entity lookups.
type CacheOptions struct {
	TTL time.Duration
	Log logger.Logger
}

func (s *TagService) List(ctx context.Context, opts query.Options) ([]data.Tag, error) {
	return s.repo.List(ctx, opts)
}

func (s *TagService) Get(ctx context.Context, id string) (*data.Tag, error) {
	return fetch(ctx, s.cache, "tag:"+id, func() (*data.Tag, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// Create stores a new tag. Both id and name must not be blank.
func (s *TagService) Create(ctx context.Context, id, name string) (*data.Tag, error) {
	if err := requiredID(id); err != nil {
		return nil, err
	}
	name, err := requiredText("name", name)
	if err != nil {
		return nil, err
	}
	tag := &data.Tag{ID: id, Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, id string, patch data.TagPatch) (*data.Tag, error) {
	if patch.Name != nil {
		name, err := requiredText("name", *patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	tag, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, "tag:"+id)
	return tag, nil
}

// Delete is reserved and always fails with data.ErrNotImplemented.
func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

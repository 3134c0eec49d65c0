package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/query"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PageService provides business logic for managing wiki pages.
type PageService struct {
	repo     PageRepository
	cache    *entityCache
	markdown goldmark.Markdown
}

// NewPageService creates a new PageService with the given repository.
func NewPageService(repo PageRepository, c cache.Cache, opts CacheOptions) *PageService {
	return &PageService{
		repo:     repo,
		cache:    newEntityCache(c, opts.TTL, opts.Log),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// List returns pages matching opts. filter narrows by tags and categories.
func (s *PageService) List(ctx context.Context, opts query.Options, filter data.PageFilter) ([]data.WikiPage, error) {
	return s.repo.ListFiltered(ctx, opts, filter)
}

func (s *PageService) Get(ctx context.Context, id string) (*data.WikiPage, error) {
	return fetch(ctx, s.cache, "page:"+id, func() (*data.WikiPage, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// Render returns the page content as sanitized HTML.
func (s *PageService) Render(page *data.WikiPage) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(page.Content), &buf); err != nil {
		return "", fmt.Errorf("failed to render page %s: %w", page.ID, err)
	}
	// Raw HTML in markdown passes through goldmark untouched, so the
	// rendered output is sanitized rather than the source.
	return ugcPolicy.Sanitize(buf.String()), nil
}

// Create handles the creation of a new wiki page. Title and content are
// stored as given; the content is markdown.
func (s *PageService) Create(ctx context.Context, page *data.WikiPage, authorID int64) (*data.WikiPage, error) {
	if err := requiredID(page.ID); err != nil {
		return nil, err
	}
	title, err := requiredText("title", page.Title)
	if err != nil {
		return nil, err
	}
	page.Title = title
	if strings.TrimSpace(page.CategoryID) == "" {
		return nil, &InputError{Field: "categoryId"}
	}
	if authorID != 0 {
		page.AuthorID = &authorID
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// Update handles the logic for updating an existing page.
func (s *PageService) Update(ctx context.Context, id string, patch data.WikiPagePatch) (*data.WikiPage, error) {
	if patch.Title != nil {
		title, err := requiredText("title", *patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	page, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, "page:"+id)
	return page, nil
}

// Delete handles the deletion of a page by its ID.
func (s *PageService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx, "page:"+id)
	return nil
}

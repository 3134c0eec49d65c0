package data

import (
	"context"
	"time"

	"go-wiki-api/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// PageFilter narrows a page listing beyond the common query options.
// Tags matches pages carrying any of the tags; Categories matches pages in
// any of the categories. Nil means no restriction.
type PageFilter struct {
	Tags       []string
	Categories []string
}

// PageRepository stores wiki pages and their tag assignments.
type PageRepository struct {
	store *Store
	now   func() time.Time
}

func NewPageRepository(store *Store) *PageRepository {
	return &PageRepository{store: store, now: time.Now}
}

func (r *PageRepository) List(ctx context.Context, opts query.Options) ([]WikiPage, error) {
	return r.ListFiltered(ctx, opts, PageFilter{})
}

// ListFiltered lists pages matching opts and filter, each with its tags.
func (r *PageRepository) ListFiltered(ctx context.Context, opts query.Options, filter PageFilter) ([]WikiPage, error) {
	var extra []sq.Sqlizer
	if filter.Tags != nil {
		sub := sq.Select("page_id").From("wiki_page_tags").Where(query.In("tag_id", filter.Tags))
		extra = append(extra, query.InSubquery("id", sub))
	}
	if filter.Categories != nil {
		extra = append(extra, query.In("category_id", filter.Categories))
	}

	pages, err := list[WikiPage](ctx, r.store, query.WikiPage, opts, extra...)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, r.store.db, pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *PageRepository) GetByID(ctx context.Context, id string) (*WikiPage, error) {
	return r.get(ctx, r.store.db, id)
}

func (r *PageRepository) get(ctx context.Context, q sqlx.QueryerContext, id string) (*WikiPage, error) {
	page, err := getByID[WikiPage](ctx, q, r.store, query.WikiPage, id)
	if err != nil {
		return nil, err
	}
	pages := []WikiPage{*page}
	if err := r.loadTags(ctx, q, pages); err != nil {
		return nil, err
	}
	return &pages[0], nil
}

// Create inserts the page and its tag assignments in one transaction.
func (r *PageRepository) Create(ctx context.Context, page *WikiPage) error {
	now := r.now().UTC().Truncate(time.Second)
	page.CreatedAt = now
	page.UpdatedAt = now
	page.Tags = dedupeTags(page.Tags)

	return r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		b := r.store.sb.Insert("wiki_pages").
			Columns("id", "title", "content", "category_id", "author_id", "created_at", "updated_at").
			Values(page.ID, page.Title, page.Content, page.CategoryID, page.AuthorID, page.CreatedAt, page.UpdatedAt)
		if _, err := execContext(ctx, tx, b); err != nil {
			return HandleSQLError(err, query.WikiPage)
		}
		return r.insertTags(ctx, tx, page.ID, page.Tags)
	})
}

// Update applies patch atomically. A non-nil patch.Tags replaces the tag set.
func (r *PageRepository) Update(ctx context.Context, id string, patch WikiPagePatch) (*WikiPage, error) {
	var updated *WikiPage
	err := r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getByID[WikiPage](ctx, tx, r.store, query.WikiPage, id); err != nil {
			return err
		}

		set := map[string]interface{}{}
		if patch.Title != nil {
			set["title"] = *patch.Title
		}
		if patch.Content != nil {
			set["content"] = *patch.Content
		}
		if patch.CategoryID != nil {
			set["category_id"] = *patch.CategoryID
		}
		if len(set) > 0 || patch.Tags != nil {
			set["updated_at"] = r.now().UTC().Truncate(time.Second)
			b := r.store.sb.Update("wiki_pages").SetMap(set).Where("id = ?", id)
			if _, err := execContext(ctx, tx, b); err != nil {
				return HandleSQLError(err, query.WikiPage)
			}
		}

		if patch.Tags != nil {
			del := r.store.sb.Delete("wiki_page_tags").Where("page_id = ?", id)
			if _, err := execContext(ctx, tx, del); err != nil {
				return HandleSQLError(err, query.WikiPage)
			}
			if err := r.insertTags(ctx, tx, id, dedupeTags(*patch.Tags)); err != nil {
				return err
			}
		}

		page, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the page and its tag assignments.
func (r *PageRepository) Delete(ctx context.Context, id string) error {
	return r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		del := r.store.sb.Delete("wiki_page_tags").Where("page_id = ?", id)
		if _, err := execContext(ctx, tx, del); err != nil {
			return HandleSQLError(err, query.WikiPage)
		}
		res, err := execContext(ctx, tx, r.store.sb.Delete("wiki_pages").Where("id = ?", id))
		if err != nil {
			return HandleSQLError(err, query.WikiPage)
		}
		return mustAffect(res)
	})
}

func (r *PageRepository) insertTags(ctx context.Context, tx *sqlx.Tx, pageID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	b := r.store.sb.Insert("wiki_page_tags").Columns("page_id", "tag_id")
	for _, tag := range tags {
		b = b.Values(pageID, tag)
	}
	if _, err := execContext(ctx, tx, b); err != nil {
		return HandleSQLError(err, query.WikiPage)
	}
	return nil
}

// loadTags fills in the tag ids of every page with one query.
func (r *PageRepository) loadTags(ctx context.Context, q sqlx.QueryerContext, pages []WikiPage) error {
	if len(pages) == 0 {
		return nil
	}
	ids := make([]string, len(pages))
	for i := range pages {
		ids[i] = pages[i].ID
		pages[i].Tags = []string{}
	}

	type pageTag struct {
		PageID string `db:"page_id"`
		TagID  string `db:"tag_id"`
	}
	b := r.store.sb.Select("page_id", "tag_id").
		From("wiki_page_tags").
		Where(query.In("page_id", ids)).
		OrderBy("tag_id")
	rows, err := selectAll[pageTag](ctx, q, b)
	if err != nil {
		return HandleSQLError(err, query.WikiPage)
	}

	index := make(map[string]int, len(pages))
	for i := range pages {
		index[pages[i].ID] = i
	}
	for _, row := range rows {
		if i, ok := index[row.PageID]; ok {
			pages[i].Tags = append(pages[i].Tags, row.TagID)
		}
	}
	return nil
}

func dedupeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

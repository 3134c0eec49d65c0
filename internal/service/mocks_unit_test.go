//go:build unit

package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/query"
)

// newTestCache creates a SQLite cache in a temporary directory.
func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// mockTagRepository is a mock implementation of TagRepository.
type mockTagRepository struct {
	getByIDFunc func(id string) (*data.Tag, error)
	createFunc  func(tag *data.Tag) error
	updateFunc  func(id string, patch data.TagPatch) (*data.Tag, error)

	getByIDCalled int
	createCalled  int
	lastPatch     data.TagPatch
}

var _ TagRepository = (*mockTagRepository)(nil)

func (m *mockTagRepository) List(ctx context.Context, opts query.Options) ([]data.Tag, error) {
	return []data.Tag{}, nil
}

func (m *mockTagRepository) GetByID(ctx context.Context, id string) (*data.Tag, error) {
	m.getByIDCalled++
	if m.getByIDFunc != nil {
		return m.getByIDFunc(id)
	}
	return nil, data.ErrNotFound
}

func (m *mockTagRepository) Create(ctx context.Context, tag *data.Tag) error {
	m.createCalled++
	if m.createFunc != nil {
		return m.createFunc(tag)
	}
	return nil
}

func (m *mockTagRepository) Update(ctx context.Context, id string, patch data.TagPatch) (*data.Tag, error) {
	m.lastPatch = patch
	if m.updateFunc != nil {
		return m.updateFunc(id, patch)
	}
	return nil, data.ErrNotFound
}

func (m *mockTagRepository) Delete(ctx context.Context, id string) error {
	return data.ErrNotImplemented
}

// mockCategoryRepository is a mock implementation of CategoryRepository.
type mockCategoryRepository struct {
	createFunc func(category *data.Category) error
	updateFunc func(id string, patch data.CategoryPatch) (*data.Category, error)

	lastCreated *data.Category
	lastPatch   data.CategoryPatch
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) List(ctx context.Context, opts query.Options) ([]data.Category, error) {
	return []data.Category{}, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*data.Category, error) {
	return nil, data.ErrNotFound
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *data.Category) error {
	m.lastCreated = category
	if m.createFunc != nil {
		return m.createFunc(category)
	}
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, id string, patch data.CategoryPatch) (*data.Category, error) {
	m.lastPatch = patch
	if m.updateFunc != nil {
		return m.updateFunc(id, patch)
	}
	return &data.Category{ID: id}, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	return data.ErrNotImplemented
}

// mockPageRepository is a mock implementation of PageRepository.
type mockPageRepository struct {
	pages map[string]*data.WikiPage

	getByIDCalled int
	lastFilter    data.PageFilter
	lastCreated   *data.WikiPage
	deleteCalled  bool
}

var _ PageRepository = (*mockPageRepository)(nil)

func (m *mockPageRepository) List(ctx context.Context, opts query.Options) ([]data.WikiPage, error) {
	return m.ListFiltered(ctx, opts, data.PageFilter{})
}

func (m *mockPageRepository) ListFiltered(ctx context.Context, opts query.Options, filter data.PageFilter) ([]data.WikiPage, error) {
	m.lastFilter = filter
	out := []data.WikiPage{}
	for _, p := range m.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPageRepository) GetByID(ctx context.Context, id string) (*data.WikiPage, error) {
	m.getByIDCalled++
	if p, ok := m.pages[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockPageRepository) Create(ctx context.Context, page *data.WikiPage) error {
	m.lastCreated = page
	if _, ok := m.pages[page.ID]; ok {
		return &data.ConflictError{Entity: "page", Field: "id"}
	}
	if m.pages == nil {
		m.pages = map[string]*data.WikiPage{}
	}
	m.pages[page.ID] = page
	return nil
}

func (m *mockPageRepository) Update(ctx context.Context, id string, patch data.WikiPagePatch) (*data.WikiPage, error) {
	p, ok := m.pages[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	cp := *p
	return &cp, nil
}

func (m *mockPageRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalled = true
	if _, ok := m.pages[id]; !ok {
		return data.ErrNotFound
	}
	delete(m.pages, id)
	return nil
}

// mockUserRepository keeps users in memory keyed by id.
type mockUserRepository struct {
	users     map[int64]*data.User
	nextID    int64
	createErr error
}

var _ UserRepository = (*mockUserRepository)(nil)

func (m *mockUserRepository) List(ctx context.Context, opts query.Options) ([]data.User, error) {
	out := []data.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*data.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*data.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *data.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.users == nil {
		m.users = map[int64]*data.User{}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return data.ErrNotFound
	}
	u.Active = active
	return nil
}

func (m *mockUserRepository) Discard(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok || u.Active {
		return data.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// mockTokens issues predictable tokens.
type mockTokens struct {
	issued []int64
	err    error
}

func (m *mockTokens) Issue(userID int64) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	m.issued = append(m.issued, userID)
	return "token", time.Unix(1700000000, 0).UTC(), nil
}

// mockRoles records granted roles.
type mockRoles struct {
	granted map[string][]string
	err     error
}

func (m *mockRoles) AddRoleForUser(user string, role string, domain ...string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.granted == nil {
		m.granted = map[string][]string{}
	}
	m.granted[user] = append(m.granted[user], role)
	return true, nil
}

// failingCache errors on every call.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error { return errCacheDown }
func (failingCache) Delete(context.Context, string) error { return errCacheDown }
func (failingCache) Close() error { return nil }

//go:build unit

package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"go-wiki-api/internal/config"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory Store.
type mockStore struct {
	mu        sync.Mutex
	logs      map[string]*data.Log
	entries   []data.LogEntry
	createErr error
	addErr    error
	finalized map[string]int
	// finalizeErrs are returned by successive Finalize calls.
	finalizeErrs []error
}

func newMockStore() *mockStore {
	return &mockStore{logs: map[string]*data.Log{}, finalized: map[string]int{}}
}

func (m *mockStore) Create(ctx context.Context, l *data.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *mockStore) AddEntry(ctx context.Context, e *data.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockStore) Finalize(ctx context.Context, id string, status int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalized[id]++
	if len(m.finalizeErrs) > 0 {
		err := m.finalizeErrs[0]
		m.finalizeErrs = m.finalizeErrs[1:]
		if err != nil {
			return err
		}
	}
	m.logs[id].Status = status
	m.logs[id].FinalizedAt = &at
	return nil
}

func TestOpenWritesProvisionalLog(t *testing.T) {
	store := newMockStore()
	r := NewRecorder(store, logger.Nop())

	uid := int64(7)
	s, err := r.Open(context.Background(), "PUT", "/v1/wiki/tag/vendor", &uid)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())

	l := store.logs[s.ID()]
	require.NotNil(t, l)
	assert.Equal(t, ProvisionalStatus, l.Status)
	assert.Equal(t, "/v1/wiki/tag/vendor", l.Route)
	assert.Equal(t, "PUT", l.Method)
	assert.Equal(t, &uid, l.UserID)
	assert.Nil(t, l.FinalizedAt)
}

func TestOpenFailure(t *testing.T) {
	store := newMockStore()
	store.createErr = errors.New("database is down")
	r := NewRecorder(store, logger.Nop())

	s, err := r.Open(context.Background(), "GET", "/v1/wiki/tag", nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, store.createErr)
}

func TestFinalizeExactlyOnce(t *testing.T) {
	store := newMockStore()
	var buf bytes.Buffer
	r := NewRecorder(store, logger.New(config.LogConfig{Level: "info", Format: "json"}, &buf))
	ctx := context.Background()

	s, err := r.Open(ctx, "POST", "/v1/wiki/tag", nil)
	require.NoError(t, err)
	require.NoError(t, s.Info(ctx, "creating tag"))

	require.NoError(t, s.Finalize(ctx, 400))
	assert.True(t, s.Finalized())
	assert.ErrorIs(t, s.Finalize(ctx, 500), ErrSessionFinalized)
	assert.Equal(t, 1, store.finalized[s.ID()])
	assert.Equal(t, 400, store.logs[s.ID()].Status)

	err = s.Warn(ctx, "too late")
	assert.ErrorIs(t, err, ErrSessionFinalized)
	assert.Len(t, store.entries, 1)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "too late")
}

func TestFinalizeRetriesStoreFailures(t *testing.T) {
	ctx := context.Background()
	noWait := func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2) }

	t.Run("transient failure", func(t *testing.T) {
		store := newMockStore()
		r := NewRecorder(store, logger.Nop())
		r.backOff = noWait
		s, err := r.Open(ctx, "POST", "/v1/wiki/tag", nil)
		require.NoError(t, err)

		store.finalizeErrs = []error{errors.New("database is locked")}
		require.NoError(t, s.Finalize(ctx, 201))
		assert.Equal(t, 2, store.finalized[s.ID()])
		assert.Equal(t, 201, store.logs[s.ID()].Status)
		assert.NotNil(t, store.logs[s.ID()].FinalizedAt)
	})

	t.Run("persistent failure is logged with the log id", func(t *testing.T) {
		store := newMockStore()
		var buf bytes.Buffer
		r := NewRecorder(store, logger.New(config.LogConfig{Level: "info", Format: "json"}, &buf))
		r.backOff = noWait
		s, err := r.Open(ctx, "POST", "/v1/wiki/tag", nil)
		require.NoError(t, err)

		down := errors.New("connection refused")
		store.finalizeErrs = []error{down, down, down}
		err = s.Finalize(ctx, 500)
		assert.ErrorIs(t, err, down)
		assert.Equal(t, 3, store.finalized[s.ID()])
		assert.True(t, s.Finalized())
		assert.Contains(t, buf.String(), s.ID())
		assert.Contains(t, buf.String(), "Audit log left provisional")
	})

	t.Run("already closed is not retried", func(t *testing.T) {
		store := newMockStore()
		r := NewRecorder(store, logger.Nop())
		r.backOff = noWait
		s, err := r.Open(ctx, "POST", "/v1/wiki/tag", nil)
		require.NoError(t, err)

		store.finalizeErrs = []error{fmt.Errorf("log %s not open: %w", s.ID(), data.ErrNotFound)}
		assert.ErrorIs(t, s.Finalize(ctx, 200), data.ErrNotFound)
		assert.Equal(t, 1, store.finalized[s.ID()])
	})
}

func TestAppendPositionsAreMonotonic(t *testing.T) {
	store := newMockStore()
	r := NewRecorder(store, logger.Nop())
	ctx := context.Background()
	s, err := r.Open(ctx, "GET", "/v1/wiki/page", nil)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Info(ctx, fmt.Sprintf("entry %d", i)))
		}(i)
	}
	wg.Wait()

	positions := make([]int, 0, n)
	for i, e := range store.entries {
		positions = append(positions, e.Position)
		if i > 0 {
			assert.Greater(t, e.Position, store.entries[i-1].Position, "positions follow insertion order")
		}
	}
	sort.Ints(positions)
	for i, p := range positions {
		assert.Equal(t, i+1, p)
	}
}

func TestAppendFailureDoesNotAdvancePosition(t *testing.T) {
	store := newMockStore()
	r := NewRecorder(store, logger.Nop())
	ctx := context.Background()
	s, err := r.Open(ctx, "GET", "/", nil)
	require.NoError(t, err)

	store.addErr = errors.New("write failed")
	assert.Error(t, s.Error(ctx, "lost"))

	store.addErr = nil
	require.NoError(t, s.Error(ctx, "kept"))
	require.Len(t, store.entries, 1)
	assert.Equal(t, 1, store.entries[0].Position)
	assert.Equal(t, "error", store.entries[0].Level)
}

func TestAppendRejectsUnknownLevel(t *testing.T) {
	r := NewRecorder(newMockStore(), logger.Nop())
	s, err := r.Open(context.Background(), "GET", "/", nil)
	require.NoError(t, err)
	assert.Error(t, s.Append(context.Background(), "debug", "x"))
}

func TestNilSessionIsNoop(t *testing.T) {
	var s *Session
	ctx := context.Background()
	assert.NoError(t, s.Info(ctx, "ignored"))
	assert.NoError(t, s.Finalize(ctx, 200))
	assert.False(t, s.Finalized())
	assert.Empty(t, s.ID())
	assert.Nil(t, FromContext(ctx))
}

func TestContext(t *testing.T) {
	r := NewRecorder(newMockStore(), logger.Nop())
	s, err := r.Open(context.Background(), "GET", "/", nil)
	require.NoError(t, err)

	ctx := WithSession(context.Background(), s)
	assert.Same(t, s, FromContext(ctx))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "aborted", statusClass(StatusAborted))
}

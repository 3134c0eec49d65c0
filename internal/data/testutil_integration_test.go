//go:build integration

package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-wiki-api/internal/config"

	"github.com/stretchr/testify/require"
)

// newTestStore returns a store backed by a migrated SQLite file database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.DBConfig{
		Driver:         "sqlite",
		DSN:            filepath.Join(t.TempDir(), "wiki.db"),
		ConnectTimeout: 5 * time.Second,
	}
	require.NoError(t, ApplyMigrations(cfg))

	db, dialect, err := NewDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, dialect)
}

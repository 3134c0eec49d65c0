//go:build integration

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-wiki-api/internal/config"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAgainstSQLite(t *testing.T) {
	cfg := config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "audit.db"), ConnectTimeout: 5 * time.Second}
	require.NoError(t, data.ApplyMigrations(cfg))
	db, dialect, err := data.NewDB(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	logs := data.NewLogRepository(data.NewStore(db, dialect))
	r := NewRecorder(logs, logger.Nop())
	ctx := context.Background()

	s, err := r.Open(ctx, "POST", "/v1/wiki/tag", nil)
	require.NoError(t, err)

	stored, err := logs.GetByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, ProvisionalStatus, stored.Status)
	assert.Nil(t, stored.FinalizedAt)

	require.NoError(t, s.Info(ctx, "first"))
	require.NoError(t, s.Error(ctx, "second"))
	require.NoError(t, s.Finalize(ctx, 500))
	assert.ErrorIs(t, s.Info(ctx, "third"), ErrSessionFinalized)

	stored, err = logs.GetByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, 500, stored.Status)
	assert.NotNil(t, stored.FinalizedAt)
	require.Len(t, stored.Entries, 2)
	assert.Equal(t, "first", stored.Entries[0].Message)
	assert.Equal(t, "second", stored.Entries[1].Message)
	assert.Equal(t, "error", stored.Entries[1].Level)
}

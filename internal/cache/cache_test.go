//go:build unit

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-wiki-api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "tag:vendor", []byte(`{"id":"vendor"}`), time.Minute))
	val, err = c.Get(ctx, "tag:vendor")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"vendor"}`, string(val))

	require.NoError(t, c.Set(ctx, "tag:vendor", []byte(`{"id":"vendor","name":"V"}`), time.Minute))
	val, err = c.Get(ctx, "tag:vendor")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"vendor","name":"V"}`, string(val))

	require.NoError(t, c.Delete(ctx, "tag:vendor"))
	val, err = c.Get(ctx, "tag:vendor")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

	now = now.Add(2 * time.Second)
	val, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Millisecond))
	now = now.Add(time.Second)
	purged, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	val, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(val))
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedis(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "category:guides", []byte("cached"), time.Minute))
	assert.True(t, mr.Exists("wiki:category:guides"))

	val, err = c.Get(ctx, "category:guides")
	require.NoError(t, err)
	assert.Equal(t, "cached", string(val))

	mr.FastForward(2 * time.Minute)
	val, err = c.Get(ctx, "category:guides")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("wiki:k"))
}

func TestRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	c, err = New(config.CacheConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, c)
	require.NoError(t, c.Close())

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}

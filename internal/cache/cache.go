package cache

import (
	"context"
	"fmt"
	"time"

	"go-wiki-api/internal/config"
)

// Cache is a byte-oriented key/value store with per-item expiry.
// Get returns nil, nil on a miss or an expired item.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the backend selected by cfg.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "redis":
		return NewRedis(cfg.Redis)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) Close() error { return nil }

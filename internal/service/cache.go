package service

import (
	"context"
	"encoding/json"
	"time"

	"go-wiki-api/internal/cache"
	"go-wiki-api/internal/logger"
)

// entityCache stores JSON-encoded entities by key. Cache failures are logged
// and otherwise ignored; the repository stays the source of truth.
type entityCache struct {
	c   cache.Cache
	ttl time.Duration
	log logger.Logger
}

func newEntityCache(c cache.Cache, ttl time.Duration, log logger.Logger) *entityCache {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &entityCache{c: c, ttl: ttl, log: log}
}

// fetch returns the cached value for key or loads and caches it.
func fetch[T any](ctx context.Context, ec *entityCache, key string, load func() (*T, error)) (*T, error) {
	raw, err := ec.c.Get(ctx, key)
	if err != nil {
		ec.log.Warn("Cache read failed for " + key + ": " + err.Error())
	}
	if raw != nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	ec.store(ctx, key, v)
	return v, nil
}

func (ec *entityCache) store(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := ec.c.Set(ctx, key, raw, ec.ttl); err != nil {
		ec.log.Warn("Cache write failed for " + key + ": " + err.Error())
	}
}

func (ec *entityCache) invalidate(ctx context.Context, key string) {
	if err := ec.c.Delete(ctx, key); err != nil {
		ec.log.Warn("Cache invalidation failed for " + key + ": " + err.Error())
	}
}

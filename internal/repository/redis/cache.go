package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache. A nil *Cache is valid and caches nothing.
type Cache struct {
	rdb    *redis.Client
	flight singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// lookup decodes the value under key into out. A miss, a redis error or an
// undecodable entry all report false; callers then go to the source of truth.
func (c *Cache) lookup(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(b, out) == nil
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value under key or loads, stores and returns it.
// Concurrent misses for one key share a single loader call. A redis outage
// never fails a read, it only skips the cache.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if c == nil {
		return loader(ctx)
	}

	var cached T
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	res, err, _ := c.flight.Do(key, func() (any, error) {
		var again T
		if c.lookup(ctx, key, &again) {
			return again, nil
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		c.store(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, errors.New("redisrepo: cached value has unexpected type")
	}

	return v, nil
}

// InvalidateConfig drops the cached event configuration.
func (c *Cache) InvalidateConfig(ctx context.Context) error {
	if c == nil {
		return nil
	}

	return c.rdb.Del(ctx, KeyEventConfig()).Err()
}

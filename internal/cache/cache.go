// Package cache memoizes lookups in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache is a byte-value store with per-key expiry.
type Cache interface {
	// Get returns the value for key; ok is false on a miss.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisCache implements Cache on a Redis server.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis server at rawURL
// (redis://[:password@]host:port/db). Keys are stored under prefix.
func NewRedisCache(rawURL, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	return &RedisCache{client: redis.NewClient(opts), prefix: prefix}, nil
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return eris.Wrap(err, "cache: ping")
	}
	return nil
}

// Get reads a key.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "cache: get %s", key)
	}
	return b, true, nil
}

// Set writes a key with a TTL.
func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, val, ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: set %s", key)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Memoize returns the cached JSON value for key, or calls fn and caches its
// result for ttl. Cache failures are logged and never fail the call; fn
// errors are returned and not cached.
func Memoize[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var result T
	if c == nil {
		return fn(ctx)
	}

	cached, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		zap.L().Debug("cache: read failed", zap.String("key", key), zap.Error(err))
	case ok:
		if jsonErr := json.Unmarshal(cached, &result); jsonErr == nil {
			return result, nil
		}
		zap.L().Debug("cache: discarding undecodable entry", zap.String("key", key))
	}

	result, err = fn(ctx)
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		zap.L().Debug("cache: marshal failed", zap.String("key", key), zap.Error(err))
		return result, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		zap.L().Debug("cache: write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

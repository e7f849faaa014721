package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache stores JSON values under a key prefix. Lookups that fail for any
// reason are reported as misses; callers fall back to the source of truth.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *JSONCache) key(k string) string { return c.prefix + k }

// Get decodes the cached value into out and reports whether it was found.
func (c *JSONCache) Get(ctx context.Context, k string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *JSONCache) Set(ctx context.Context, k string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.client.Set(ctx, c.key(k), raw, c.ttl).Err()
}

func (c *JSONCache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Del(ctx, full...).Err()
}

// Version returns the generation counter for scope, creating it at 1.
// List caches embed the version in their keys; Bump orphans every entry of
// the previous generation at once.
func (c *JSONCache) Version(ctx context.Context, scope string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, errors.New("cache disabled")
	}
	vkey := c.key("version:" + scope)
	ver, err := c.client.Get(ctx, vkey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	if err := c.client.SetNX(ctx, vkey, 1, 0).Err(); err != nil {
		return 0, err
	}
	return c.client.Get(ctx, vkey).Int64()
}

func (c *JSONCache) Bump(ctx context.Context, scope string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	return c.client.Incr(ctx, c.key("version:"+scope)).Result()
}

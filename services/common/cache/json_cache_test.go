package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*JSONCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSONCache(client, "test:", time.Minute), mr
}

type shopView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func TestJSONCache_SetGetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var out shopView
	assert.False(t, c.Get(ctx, "bakery", &out))

	require.NoError(t, c.Set(ctx, "bakery", shopView{Slug: "bakery", Name: "Bakery"}))
	assert.True(t, mr.Exists("test:bakery"))
	assert.Equal(t, time.Minute, mr.TTL("test:bakery"))

	require.True(t, c.Get(ctx, "bakery", &out))
	assert.Equal(t, "Bakery", out.Name)

	require.NoError(t, c.Delete(ctx, "bakery"))
	assert.False(t, c.Get(ctx, "bakery", &out))
}

func TestJSONCache_VersionAndBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	v, err := c.Version(ctx, "shop-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	v, err = c.Bump(ctx, "shop-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	v, err = c.Version(ctx, "shop-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestJSONCache_NilIsDisabled(t *testing.T) {
	var c *JSONCache
	var out shopView
	assert.False(t, c.Get(context.Background(), "x", &out))
	assert.NoError(t, c.Set(context.Background(), "x", out))
	_, err := c.Version(context.Background(), "x")
	assert.Error(t, err)
}

func TestJSONCache_UnreachableServerIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewJSONCache(client, "x:", time.Minute)

	var out shopView
	assert.False(t, c.Get(context.Background(), "k", &out))
	assert.Error(t, c.Set(context.Background(), "k", out))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0", zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "://bad", zap.NewNop())
	assert.Error(t, err)
}

package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheWithClient(client, time.Minute), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k1", "# Draft"))
	require.True(t, mr.Exists("draft:k1"))

	draft, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "# Draft", draft)
}

func TestRedisCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", "# Draft"))
	require.Equal(t, time.Minute, mr.TTL("draft:k1"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	require.Equal(t, DefaultCacheTTL, cache.ttl)

	_, err = NewRedisCache(context.Background(), "not a url", 0)
	require.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	a := testFields("50000")
	b := testFields("60000")

	require.Equal(t, CacheKey("m", a), CacheKey("m", a))
	require.NotEqual(t, CacheKey("m", a), CacheKey("m", b))
	require.NotEqual(t, CacheKey("m", a), CacheKey("n", a))
	require.Len(t, CacheKey("m", a), 64)
}

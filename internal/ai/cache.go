package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a generated draft is kept.
const DefaultCacheTTL = time.Hour

// Cache stores generated drafts by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, draft string) error
}

// RedisCache implements Cache on Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{
		client: client,
		prefix: "draft:",
		ttl:    ttl,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get returns the cached draft, if present
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	draft, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup draft: %w", err)
	}
	return draft, true, nil
}

// Set stores a draft with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key, draft string) error {
	if err := c.client.Set(ctx, c.key(key), draft, c.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CacheKey derives a stable key from the form content and model name.
func CacheKey(model string, fields Fields) string {
	data, _ := json.Marshal(fields)
	sum := sha256.Sum256(append([]byte(model+"\x00"), data...))
	return hex.EncodeToString(sum[:])
}

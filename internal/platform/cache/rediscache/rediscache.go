// Package rediscache provides a Redis-backed payload cache.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores payloads in Redis under a namespace prefix.
type Cache struct {
	client    redis.UniversalClient
	namespace string
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, addr string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, "scholarflow:"), nil
}

// New wraps an existing client.
func New(client redis.UniversalClient, namespace string) *Cache {
	return &Cache{client: client, namespace: namespace}
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the payload stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return payload, true, nil
}

// Set stores payload under key with ttl. Redis treats zero as no expiry.
func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.namespace+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, c.namespace+key)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ cache.Cache = (*Cache)(nil)

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the service writes.
const KeyPrefix = "zonecheck:"

// Cache stores JSON values with a fixed TTL. A Cache with no client or a
// zero TTL is disabled: Get always misses and Set does nothing.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewCache creates a cache over client. timeout bounds each round trip.
func NewCache(client *redis.Client, ttl, timeout time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, timeout: timeout}
}

// Enabled reports whether the cache talks to Redis at all.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes the value stored under key into dst. A missing key is
// (false, nil). An entry that no longer decodes is deleted so the next Set
// replaces it.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	raw, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if derr := c.Delete(ctx, key); derr != nil {
			return false, errors.Join(fmt.Errorf("decode cached value: %w", err), derr)
		}
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

// Set stores value under key as JSON.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, KeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.Del(ctx, KeyPrefix+key).Err()
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-payment-gateway/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache implements ports.IdempotencyCache using Redis. It is
// the fast path only: the durable store remains authoritative, so a
// cold or flushed cache never changes outcomes, only latency.
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client *goredis.Client) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: "idempotency:",
	}
}

func (c *IdempotencyCache) cacheKey(route, key string) string {
	return c.prefix + route + ":" + key
}

// Get retrieves a cached response for (route, key).
// Returns nil, nil if the entry does not exist.
func (c *IdempotencyCache) Get(ctx context.Context, route, key string) (*ports.StoredResponse, error) {
	val, err := c.client.Get(ctx, c.cacheKey(route, key)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}

	var resp ports.StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("redis idempotency decode: %w", err)
	}
	return &resp, nil
}

// Set stores a response in the idempotency cache with TTL.
func (c *IdempotencyCache) Set(ctx context.Context, route, key string, resp *ports.StoredResponse, ttl time.Duration) error {
	val, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("redis idempotency encode: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(route, key), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

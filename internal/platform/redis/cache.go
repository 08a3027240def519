package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/taskdesk/taskdesk-api/internal/cache"
)

// Cache implements cache.Gateway on Redis strings with per-key expiry.
type Cache struct {
	client goredis.Cmdable
	prefix string
}

var _ cache.Gateway = (*Cache)(nil)

// NewCache creates a cache gateway. Keys are stored under KeyPrefix.
func NewCache(client goredis.Cmdable) *Cache {
	return &Cache{client: client, prefix: KeyPrefix + "cache:"}
}

// Get implements cache.Gateway. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", err)
	}
	return data, true, nil
}

// Set implements cache.Gateway. A non-positive ttl stores nothing.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Invalidate implements cache.Gateway with a single DEL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// Ping implements cache.Gateway.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %w", cache.ErrUnavailable, op, err)
}

package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/taskdesk-api/internal/cache"
	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
)

// setupTestClient connects to REDIS_ADDR (default localhost:6379) and skips
// the test when nothing answers.
func setupTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache(t *testing.T) {
	client := setupTestClient(t)
	c := NewCache(client)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, []byte(`[{"id":"1"}]`), time.Minute))
	got, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, c.Invalidate(ctx, key, "test:absent"))
	_, hit, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, []byte("x"), 0))
	_, hit, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit, "zero ttl stores nothing")

	require.NoError(t, c.Invalidate(ctx))
	assert.NoError(t, c.Ping(ctx))
}

func TestCacheExpiry(t *testing.T) {
	client := setupTestClient(t)
	c := NewCache(client)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	require.NoError(t, c.Set(ctx, key, []byte("v"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)
	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheUnavailable(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewCache(client)
	ctx := context.Background()

	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrUnavailable)
	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), time.Minute), cache.ErrUnavailable)
	assert.ErrorIs(t, c.Invalidate(ctx, "k"), cache.ErrUnavailable)
	assert.ErrorIs(t, c.Ping(ctx), cache.ErrUnavailable)
}

func TestFixedWindowLimiter(t *testing.T) {
	client := setupTestClient(t)
	l, err := NewFixedWindowLimiter(client, ratelimit.Policy{Limit: 3, Window: 300 * time.Millisecond})
	require.NoError(t, err)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		d, err := l.Admit(ctx, key)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
		assert.Equal(t, 3, d.Limit)
	}

	d, err := l.Admit(ctx, key)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, 300*time.Millisecond)

	other, err := l.Admit(ctx, key+":other")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	time.Sleep(400 * time.Millisecond)
	d, err = l.Admit(ctx, key)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a new window opens after expiry")
}

func TestFixedWindowLimiterConcurrentBurst(t *testing.T) {
	client := setupTestClient(t)
	l, err := NewFixedWindowLimiter(client, ratelimit.Policy{Limit: 25, Window: time.Minute})
	require.NoError(t, err)
	key := "test:" + uuid.NewString()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Admit(context.Background(), key)
			if assert.NoError(t, err) && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(25), allowed.Load())
}

func TestNewFixedWindowLimiterRejectsBadPolicy(t *testing.T) {
	_, err := NewFixedWindowLimiter(nil, ratelimit.Policy{Limit: 0, Window: time.Second})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{}, nil)
	assert.Error(t, err)

	_, err = NewClient(context.Background(), config.RedisConfig{URL: "http://nope"}, nil)
	assert.Error(t, err)

	// An unreachable server still yields a client.
	client, err := NewClient(context.Background(), config.RedisConfig{
		URL:                "redis://127.0.0.1:1/0",
		DialTimeoutSeconds: 1,
		OpTimeoutSeconds:   1,
		PoolSize:           2,
	}, nil)
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLimiter(t *testing.T, limit int, window time.Duration) (*FixedWindow, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l, err := NewFixedWindowWithClock(Policy{Limit: limit, Window: window}, clock.Now)
	require.NoError(t, err)
	return l, clock
}

func TestPolicyValidate(t *testing.T) {
	assert.Error(t, Policy{Limit: 0, Window: time.Second}.Validate())
	assert.Error(t, Policy{Limit: 1, Window: 0}.Validate())
	assert.NoError(t, Policy{Limit: 1, Window: time.Second}.Validate())

	_, err := NewFixedWindow(Policy{})
	assert.Error(t, err)
}

func TestFixedWindowAdmitsUpToLimit(t *testing.T) {
	l, clock := newLimiter(t, 2, time.Minute)
	ctx := context.Background()

	d, err := l.Admit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, 2, d.Limit)

	d, err = l.Admit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	clock.Advance(15 * time.Second)
	d, err = l.Admit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 45*time.Second, d.RetryAfter)
	assert.Equal(t, 45, d.RetryAfterSeconds())

	// Other keys are independent.
	d, err = l.Admit(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowResetsAtBoundary(t *testing.T) {
	l, clock := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	d, _ := l.Admit(ctx, "k")
	assert.True(t, d.Allowed)
	d, _ = l.Admit(ctx, "k")
	assert.False(t, d.Allowed)

	clock.Advance(time.Minute)
	d, err := l.Admit(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "counter resets when the window closes")
}

func TestFixedWindowSweepsClosedWindows(t *testing.T) {
	l, clock := newLimiter(t, 5, time.Second)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := l.Admit(ctx, fmt.Sprintf("k%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 10, l.Keys())

	clock.Advance(2 * time.Second)
	_, err := l.Admit(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Keys())
}

func TestFixedWindowConcurrentBurst(t *testing.T) {
	const limit = 50
	l, _ := newLimiter(t, limit, time.Minute)
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Admit(ctx, "burst")
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), allowed.Load())
}

func TestFixedWindowCanceledContext(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Admit(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExceededError(t *testing.T) {
	err := NewExceededError(Decision{RetryAfter: 1500 * time.Millisecond}, "slow down")
	assert.True(t, errors.Is(err, ErrLimited))
	assert.Equal(t, "slow down", err.Message)
	assert.Contains(t, err.Error(), "retry after 2s")

	assert.Equal(t, 1, Decision{}.RetryAfterSeconds())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:abc", UserKey("abc"))
	assert.Equal(t, "ip:10.0.0.1", ClientKey("10.0.0.1"))
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/taskdesk-api/internal/domain"
)

func TestListKey(t *testing.T) {
	done := domain.StatusDone
	assert.Equal(t, "tasks", ListKey(nil))
	assert.Equal(t, "tasks:status:done", ListKey(&done))
}

func TestListKeys(t *testing.T) {
	keys := ListKeys(domain.DefaultStatusSet())
	assert.Equal(t, []string{
		"tasks",
		"tasks:status:pending",
		"tasks:status:in_progress",
		"tasks:status:done",
	}, keys)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemoryGetSet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemoryWithClock(clock.Now)
	ctx := context.Background()

	_, hit, err := m.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, m.Set(ctx, "tasks", []byte(`[]`), time.Minute))

	got, hit, err := m.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`[]`), got)

	// Returned slices are copies.
	got[0] = 'x'
	again, _, _ := m.Get(ctx, "tasks")
	assert.Equal(t, []byte(`[]`), again)

	clock.now = clock.now.Add(time.Minute)
	_, hit, err = m.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.False(t, hit, "entry expires at its ttl")
	assert.Equal(t, 0, m.Len())
}

func TestMemoryZeroTTLStoresNothing(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryInvalidate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, k := range ListKeys(domain.DefaultStatusSet()) {
		require.NoError(t, m.Set(ctx, k, []byte("v"), time.Minute))
	}
	require.NoError(t, m.Set(ctx, "other", []byte("v"), time.Minute))

	require.NoError(t, m.Invalidate(ctx, ListKeys(domain.DefaultStatusSet())...))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Invalidate(ctx, "missing"))
}

func TestMemorySweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m := NewMemoryWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, m.Set(ctx, "long", []byte("v"), time.Hour))

	clock.now = clock.now.Add(time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemoryCanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := m.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, m.Set(ctx, "k", nil, time.Second), ErrUnavailable)
	assert.ErrorIs(t, m.Invalidate(ctx, "k"), ErrUnavailable)
	assert.ErrorIs(t, m.Ping(ctx), ErrUnavailable)
}

func TestNoop(t *testing.T) {
	var g Gateway = Noop{}
	ctx := context.Background()
	require.NoError(t, g.Set(ctx, "k", []byte("v"), time.Minute))
	_, hit, err := g.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, g.Invalidate(ctx, "k"))
	assert.NoError(t, g.Ping(ctx))
}

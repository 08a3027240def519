package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow is an in-process Limiter. Each key's window opens on its
// first request and lasts Policy.Window; the counter starts over when the
// window closes. Counters are guarded by a single mutex so concurrent
// bursts are counted exactly.
type FixedWindow struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

var _ Limiter = (*FixedWindow)(nil)

// NewFixedWindow creates an in-process fixed-window limiter.
func NewFixedWindow(p Policy) (*FixedWindow, error) {
	return NewFixedWindowWithClock(p, time.Now)
}

// NewFixedWindowWithClock creates a limiter with an injectable clock.
func NewFixedWindowWithClock(p Policy, now func() time.Time) (*FixedWindow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &FixedWindow{
		policy:  p,
		now:     now,
		windows: make(map[string]*window),
	}, nil
}

// Admit implements Limiter.
func (f *FixedWindow) Admit(ctx context.Context, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sweepLocked(now)

	w, ok := f.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(f.policy.Window)}
		f.windows[key] = w
	}

	d := Decision{Limit: f.policy.Limit, ResetAt: w.resetAt}
	if w.count >= f.policy.Limit {
		d.RetryAfter = w.resetAt.Sub(now)
		return d, nil
	}

	w.count++
	d.Allowed = true
	d.Remaining = f.policy.Limit - w.count
	return d, nil
}

// Keys returns the number of tracked keys.
func (f *FixedWindow) Keys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

// sweepLocked drops closed windows at most once per window length.
func (f *FixedWindow) sweepLocked(now time.Time) {
	if now.Before(f.nextSweep) {
		return
	}
	for k, w := range f.windows {
		if !now.Before(w.resetAt) {
			delete(f.windows, k)
		}
	}
	f.nextSweep = now.Add(f.policy.Window)
}

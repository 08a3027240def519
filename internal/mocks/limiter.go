package mocks

import (
	"context"
	"sync"

	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
)

// MockLimiter implements ratelimit.Limiter for testing. Without AdmitFn it
// allows every request.
type MockLimiter struct {
	AdmitFn func(ctx context.Context, key string) (ratelimit.Decision, error)

	mu   sync.Mutex
	keys []string
}

var _ ratelimit.Limiter = (*MockLimiter)(nil)

// Admit implements ratelimit.Limiter.
func (m *MockLimiter) Admit(ctx context.Context, key string) (ratelimit.Decision, error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	if m.AdmitFn != nil {
		return m.AdmitFn(ctx, key)
	}
	return ratelimit.Decision{Allowed: true, Limit: 60, Remaining: 59}, nil
}

// Keys returns the keys passed to Admit, in call order.
func (m *MockLimiter) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

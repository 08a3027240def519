// Package cache defines the read-through cache used for task listings and
// an in-process implementation. Cache failures are never fatal to a
// request: callers treat a failed read as a miss and log failed writes.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/domain"
)

// ErrUnavailable wraps every backend failure reported by a Gateway.
var ErrUnavailable = errors.New("cache unavailable")

// ListKeyPrefix is the key of the unfiltered task list and the prefix of
// the per-status keys.
const ListKeyPrefix = "tasks"

// Gateway is a byte-oriented key/value cache with per-entry TTL.
type Gateway interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes the given keys. Missing keys are not an error.
	Invalidate(ctx context.Context, keys ...string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// ListKey returns the cache key of a task listing. A nil status is the
// unfiltered listing.
func ListKey(status *domain.TaskStatus) string {
	if status == nil {
		return ListKeyPrefix
	}
	return ListKeyPrefix + ":status:" + string(*status)
}

// ListKeys returns every listing key that a task write can affect: the
// unfiltered key plus one per configured status.
func ListKeys(statuses domain.StatusSet) []string {
	values := statuses.Values()
	keys := make([]string, 0, len(values)+1)
	keys = append(keys, ListKey(nil))
	for i := range values {
		keys = append(keys, ListKey(&values[i]))
	}
	return keys
}

// Noop is a Gateway that never stores anything. It backs the "none" cache
// driver.
type Noop struct{}

var _ Gateway = Noop{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Invalidate does nothing.
func (Noop) Invalidate(context.Context, ...string) error { return nil }

// Ping always succeeds.
func (Noop) Ping(context.Context) error { return nil }

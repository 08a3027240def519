// Package ratelimit implements fixed-window request admission keyed by
// caller identity or client address.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrLimited is matched by every rejection.
var ErrLimited = errors.New("rate limit exceeded")

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, minimum 1.
func (d Decision) RetryAfterSeconds() int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Limiter admits or rejects a request for key. Admit never blocks waiting
// for capacity.
type Limiter interface {
	Admit(ctx context.Context, key string) (Decision, error)
}

// Policy is a (limit, window) pair.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Validate checks that the policy can admit anything at all.
func (p Policy) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", p.Limit)
	}
	if p.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", p.Window)
	}
	return nil
}

// ExceededError is returned by callers that reject a request. It carries
// the decision so responses can include a retry hint.
type ExceededError struct {
	Decision Decision
	Message  string
}

// NewExceededError builds the rejection for d with a client-facing message.
func NewExceededError(d Decision, message string) *ExceededError {
	return &ExceededError{Decision: d, Message: message}
}

// Error implements error.
func (e *ExceededError) Error() string {
	return fmt.Sprintf("%s: retry after %ds", ErrLimited, e.Decision.RetryAfterSeconds())
}

// Unwrap makes ExceededError match ErrLimited.
func (e *ExceededError) Unwrap() error { return ErrLimited }

// UserKey is the limiter key of an authenticated caller.
func UserKey(userID string) string { return "user:" + userID }

// ClientKey is the limiter key of an anonymous caller.
func ClientKey(addr string) string { return "ip:" + addr }

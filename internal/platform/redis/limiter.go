package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
)

// fixedWindowScript admits one request for KEYS[1]. The counter expires
// ARGV[1] ms after the key's first hit; rejected requests do not count.
// Returns {allowed, count, ttl_ms}.
var fixedWindowScript = goredis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])
	local limit = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= limit then
		return {0, current, redis.call('PTTL', key)}
	end

	current = redis.call('INCR', key)
	if current == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end

	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end
	return {1, current, ttl}
`)

// FixedWindowLimiter implements ratelimit.Limiter with an atomic Lua
// script, so counts are shared by every process using the same Redis.
type FixedWindowLimiter struct {
	client goredis.Scripter
	policy ratelimit.Policy
	prefix string
	now    func() time.Time
}

var _ ratelimit.Limiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a Redis limiter for p.
func NewFixedWindowLimiter(client goredis.Scripter, p ratelimit.Policy) (*FixedWindowLimiter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &FixedWindowLimiter{
		client: client,
		policy: p,
		prefix: KeyPrefix + "ratelimit:",
		now:    time.Now,
	}, nil
}

// Admit implements ratelimit.Limiter.
func (l *FixedWindowLimiter) Admit(ctx context.Context, key string) (ratelimit.Decision, error) {
	result, err := fixedWindowScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.policy.Window.Milliseconds(),
		l.policy.Limit,
	).Int64Slice()
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(result) != 3 {
		return ratelimit.Decision{}, fmt.Errorf("unexpected redis response length: %d", len(result))
	}

	ttl := time.Duration(result[2]) * time.Millisecond
	if ttl <= 0 {
		ttl = l.policy.Window
	}

	d := ratelimit.Decision{
		Allowed: result[0] == 1,
		Limit:   l.policy.Limit,
		ResetAt: l.now().Add(ttl),
	}
	if d.Allowed {
		d.Remaining = l.policy.Limit - int(result[1])
		if d.Remaining < 0 {
			d.Remaining = 0
		}
	} else {
		d.RetryAfter = ttl
	}
	return d, nil
}

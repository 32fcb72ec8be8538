package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis.
// It keeps every divcal instance under one shared upstream quota.
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "upstream")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// slidingWindow returns {allowed, remaining, retry_after_ms}.
// Members carry a unique suffix so calls in the same millisecond all count.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window_ms
	if oldest[2] then
		retry = tonumber(oldest[2]) + window_ms - now
	end
	return {0, 0, retry}
`)

// minRetry bounds how often Wait re-asks Redis
const minRetry = 10 * time.Millisecond

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	allowed, remaining, _, err := r.take(ctx, cfg)
	return allowed, remaining, err
}

// take runs the script and also reports how long until a slot frees up
func (r *RateLimiter) take(ctx context.Context, cfg RateLimitConfig) (bool, int, time.Duration, error) {
	if !r.client.Enabled() {
		// If Redis is disabled, allow all requests
		return true, cfg.Limit, 0, nil
	}

	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{RateLimitKey(r.prefix, cfg.Key)},
		now,
		cfg.Window.Milliseconds(),
		cfg.Limit,
		member,
	).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 3 {
		return false, 0, 0, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	retry := time.Duration(result[2]) * time.Millisecond
	return result[0] == 1, int(result[1]), retry, nil
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, retry, err := r.take(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		if retry < minRetry {
			retry = minRetry
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// UpstreamRateLimit builds the limit applied to the upstream dividend API.
func UpstreamRateLimit(perSecond int) RateLimitConfig {
	if perSecond <= 0 {
		perSecond = 10
	}
	return RateLimitConfig{
		Key:    "upstream",
		Limit:  perSecond,
		Window: time.Second,
	}
}

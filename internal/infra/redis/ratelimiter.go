package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/applytrack/internal/ratelimit"
)

const (
	defaultLimitPerSec int64 = 20
	minWait                  = 25 * time.Millisecond
	windowSeconds            = 1
)

// Fixed one-second window: INCR the window key, expire it on first use.
var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter caps provider calls per key across all API replicas.
type RedisRateLimiter struct {
	client      *goredis.Client
	limitPerSec int64
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRedisRateLimiter(client *goredis.Client, limitPerSec int) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, int64(limitPerSec), time.Now, sleepWithContext)
}

func newRedisRateLimiter(
	client *goredis.Client,
	limitPerSec int64,
	nowFn func() time.Time,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &RedisRateLimiter{
		client:      client,
		limitPerSec: limitPerSec,
		now:         nowFn,
		sleep:       sleepFn,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	allowed, _, err := r.admit(ctx, key)
	return allowed, err
}

// Wait blocks until the key is admitted. A rejected call sleeps until the
// current window closes rather than polling.
func (r *RedisRateLimiter) Wait(ctx context.Context, key string) error {
	for {
		allowed, retryAfter, err := r.admit(ctx, key)
		if err != nil || allowed {
			return err
		}
		if err := r.sleep(ctx, retryAfter); err != nil {
			return err
		}
	}
}

// admit counts one call against key's current window. When the window is
// full it also returns the time left until the next one opens.
func (r *RedisRateLimiter) admit(ctx context.Context, key string) (bool, time.Duration, error) {
	if r == nil || r.client == nil {
		return false, 0, fmt.Errorf("rate limiter is not initialized")
	}
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false, 0, fmt.Errorf("rate limit key is required")
	}

	now := r.now().UTC()
	window := now.Unix()
	windowKey := fmt.Sprintf("ratelimit:%s:%d", normalized, window)
	admitted, err := allowScript.Run(ctx, r.client, []string{windowKey}, r.limitPerSec, windowSeconds).Int()
	if err != nil {
		return false, 0, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	if admitted == 1 {
		return true, 0, nil
	}

	retryAfter := time.Unix(window+windowSeconds, 0).Sub(now)
	return false, max(retryAfter, minWait), nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

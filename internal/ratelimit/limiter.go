package ratelimit

import (
	"context"
	"time"
)

// RateLimiter throttles calls per key, e.g. one mailbox per user.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Wait(ctx context.Context, key string) error
}

// ScanLocker guards against overlapping scans for the same key. Acquire
// returns a release func when the lock was taken, or ok=false when someone
// else holds it.
type ScanLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedisClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return rdb, mr
}

func TestRedisRateLimiterAllowWindow(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	now := time.Unix(1_700_000_000, 0)
	limiter, err := newRedisRateLimiter(rdb, 2, func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	want := []bool{true, true, false}
	for i, w := range want {
		allowed, err := limiter.Allow(context.Background(), "mailbox:user-1")
		if err != nil {
			t.Fatalf("Allow() call %d error = %v", i+1, err)
		}
		if allowed != w {
			t.Fatalf("Allow() call %d = %v, want %v", i+1, allowed, w)
		}
	}

	now = now.Add(time.Second)
	allowed, err := limiter.Allow(context.Background(), "mailbox:user-1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("next window should allow the call")
	}
}

func TestRedisRateLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	now := time.Unix(1_700_000_100, 0)
	limiter, err := newRedisRateLimiter(rdb, 1, func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	for _, key := range []string{"mailbox:user-1", "mailbox:user-2"} {
		allowed, err := limiter.Allow(context.Background(), key)
		if err != nil {
			t.Fatalf("Allow(%s) error = %v", key, err)
		}
		if !allowed {
			t.Fatalf("Allow(%s) should be allowed on first call", key)
		}
	}

	allowed, err := limiter.Allow(context.Background(), "MAILBOX:USER-1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("keys are case-insensitive; second call for user-1 should be rejected")
	}
}

func TestRedisRateLimiterRejectsBlankKey(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	limiter, err := NewRedisRateLimiter(rdb, 5)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	if _, err := limiter.Allow(context.Background(), "  "); err == nil {
		t.Fatal("Allow() expected error for blank key")
	}
	if _, err := NewRedisRateLimiter(nil, 5); err == nil {
		t.Fatal("NewRedisRateLimiter(nil) expected error")
	}
}

func TestRedisRateLimiterWaitSleepsUntilNextWindow(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	now := time.Unix(1_700_000_200, 0).Add(700 * time.Millisecond)
	var sleeps []time.Duration
	limiter, err := newRedisRateLimiter(
		rdb,
		1,
		func() time.Time { return now },
		func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			now = now.Add(time.Second)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	if err := limiter.Wait(context.Background(), "mailbox:user-1"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if err := limiter.Wait(context.Background(), "mailbox:user-1"); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if len(sleeps) != 1 || sleeps[0] != 300*time.Millisecond {
		t.Fatalf("sleeps = %v, want one 300ms wait", sleeps)
	}
}

func TestRedisRateLimiterWaitHasFloor(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	now := time.Unix(1_700_000_250, 0).Add(999 * time.Millisecond)
	var sleeps []time.Duration
	limiter, err := newRedisRateLimiter(
		rdb,
		1,
		func() time.Time { return now },
		func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			now = now.Add(d)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Wait(context.Background(), "webhook"); err != nil {
			t.Fatalf("Wait() call %d error = %v", i+1, err)
		}
	}
	if len(sleeps) != 1 || sleeps[0] != minWait {
		t.Fatalf("sleeps = %v, want one %v wait", sleeps, minWait)
	}
}

func TestRedisRateLimiterWaitHonorsDeadline(t *testing.T) {
	t.Parallel()

	rdb, _ := newTestRedisClient(t)
	now := time.Unix(1_700_000_300, 0)
	limiter, err := newRedisRateLimiter(rdb, 1, func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	if _, err := limiter.Allow(context.Background(), "mailbox:user-1"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx, "mailbox:user-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

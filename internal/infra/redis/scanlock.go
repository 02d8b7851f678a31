package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/applytrack/internal/ratelimit"
)

// Only the holder's token may delete the lock; an expired lock taken over by
// another scan stays untouched.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ ratelimit.ScanLocker = (*ScanLock)(nil)

// ScanLock is a per-key mutual exclusion lock built on SET NX PX.
type ScanLock struct {
	client   *goredis.Client
	newToken func() string
}

func NewScanLock(client *goredis.Client) (*ScanLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &ScanLock{client: client, newToken: uuid.NewString}, nil
}

func (l *ScanLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	normalized := strings.TrimSpace(key)
	if normalized == "" {
		return nil, false, fmt.Errorf("lock key is required")
	}
	if ttl <= 0 {
		return nil, false, fmt.Errorf("lock ttl must be positive")
	}

	lockKey := "scanlock:" + normalized
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release scan lock: %w", err)
		}
		return nil
	}
	return release, true, nil
}

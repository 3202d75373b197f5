package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const ReconciliationLockKey = "reslab:lock:reconciliation"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a single-key lease with a random token per holder.
type Lease struct {
	rdb goredis.UniversalClient
	key string
}

func NewLease(rdb goredis.UniversalClient, key string) *Lease {
	if key == "" {
		key = ReconciliationLockKey
	}
	return &Lease{rdb: rdb, key: key}
}

// Acquire implements reconciliation.Locker.
func (l *Lease) Acquire(ctx context.Context, ttl time.Duration) (bool, func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("failed to acquire lease: %w", err)
	}
	if !ok {
		return false, nil, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lease: %w", err)
		}
		return nil
	}
	return true, release, nil
}

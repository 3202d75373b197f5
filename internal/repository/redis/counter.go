package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/reslab/attendance-backend-go/internal/domain/scan"
)

const (
	liveKeyPrefix = "reslab:live:"
	liveKeyTTL    = 48 * time.Hour

	fieldCheckIn  = "check_in"
	fieldCheckOut = "check_out"
)

// CounterRepository keeps per-day scan tallies in a hash per date.
type CounterRepository struct {
	rdb goredis.UniversalClient
}

func NewCounterRepository(rdb goredis.UniversalClient) *CounterRepository {
	return &CounterRepository{rdb: rdb}
}

func liveKey(date string) string {
	return liveKeyPrefix + date
}

// Increment implements scan.CounterRepository. Only check-ins and check-outs
// are counted.
func (r *CounterRepository) Increment(ctx context.Context, date string, class scan.Classification) error {
	var field string
	switch class {
	case scan.ClassCheckIn:
		field = fieldCheckIn
	case scan.ClassCheckOut:
		field = fieldCheckOut
	default:
		return nil
	}

	key := liveKey(date)
	pipe := r.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.Expire(ctx, key, liveKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment live counter: %w", err)
	}
	return nil
}

// Get implements scan.CounterRepository.
func (r *CounterRepository) Get(ctx context.Context, date string) (scan.LiveCounts, error) {
	counts := scan.LiveCounts{Date: date}

	vals, err := r.rdb.HMGet(ctx, liveKey(date), fieldCheckIn, fieldCheckOut).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return counts, fmt.Errorf("failed to read live counter: %w", err)
	}
	if len(vals) == 2 {
		counts.CheckIn = toInt64(vals[0])
		counts.CheckOut = toInt64(vals[1])
	}
	return counts, nil
}

func toInt64(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

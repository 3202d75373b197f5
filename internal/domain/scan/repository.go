package scan

import (
	"context"
	"time"
)

// LogRepository is insert-only; scan logs are never updated.
type LogRepository interface {
	Create(ctx context.Context, log Log) (Log, error)
	List(ctx context.Context, filter ScanLogFilter, loc *time.Location) ([]Log, int64, error)
	Recent(ctx context.Context, limit int) ([]Log, error)
}

// CounterRepository keeps the best-effort live tallies for a day.
type CounterRepository interface {
	Increment(ctx context.Context, date string, class Classification) error
	Get(ctx context.Context, date string) (LiveCounts, error)
}

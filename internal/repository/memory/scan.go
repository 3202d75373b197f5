package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/scan"
)

type ScanLogRepository struct {
	mu   sync.RWMutex
	logs []scan.Log
}

func NewScanLogRepository() *ScanLogRepository {
	return &ScanLogRepository{}
}

func (r *ScanLogRepository) Create(_ context.Context, l scan.Log) (scan.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, l)
	return l, nil
}

func (r *ScanLogRepository) List(_ context.Context, f scan.ScanLogFilter, loc *time.Location) ([]scan.Log, int64, error) {
	r.mu.RLock()
	var out []scan.Log
	for _, l := range r.logs {
		if f.DeviceID != nil && *f.DeviceID != "" && l.DeviceID != *f.DeviceID {
			continue
		}
		if f.RFIDID != nil && *f.RFIDID != "" && l.RFIDID != *f.RFIDID {
			continue
		}
		if f.MemberID != nil && *f.MemberID != "" && (l.MemberID == nil || *l.MemberID != *f.MemberID) {
			continue
		}
		if f.Classification != nil && *f.Classification != "" && string(l.Classification) != *f.Classification {
			continue
		}
		if f.Date != nil && *f.Date != "" && l.ScannedAt.In(loc).Format("2006-01-02") != *f.Date {
			continue
		}
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
	total := int64(len(out))
	if f.Limit > 0 {
		start := min((max(f.Page, 1)-1)*f.Limit, len(out))
		out = out[start:min(start+f.Limit, len(out))]
	}
	return out, total, nil
}

func (r *ScanLogRepository) Recent(ctx context.Context, limit int) ([]scan.Log, error) {
	out, _, err := r.List(ctx, scan.ScanLogFilter{Page: 1, Limit: limit}, time.UTC)
	return out, err
}

// All returns the logs in insertion order.
func (r *ScanLogRepository) All() []scan.Log {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]scan.Log, len(r.logs))
	copy(out, r.logs)
	return out
}

type CounterRepository struct {
	mu     sync.Mutex
	counts map[string]scan.LiveCounts
}

func NewCounterRepository() *CounterRepository {
	return &CounterRepository{counts: make(map[string]scan.LiveCounts)}
}

func (r *CounterRepository) Increment(_ context.Context, date string, class scan.Classification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.counts[date]
	c.Date = date
	switch class {
	case scan.ClassCheckIn:
		c.CheckIn++
	case scan.ClassCheckOut:
		c.CheckOut++
	}
	r.counts[date] = c
	return nil
}

func (r *CounterRepository) Get(_ context.Context, date string) (scan.LiveCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.counts[date]
	c.Date = date
	return c, nil
}

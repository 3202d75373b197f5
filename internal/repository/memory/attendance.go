// Package memory holds map-backed repositories. They back the service tests
// and the APP_STORAGE=memory mode used when bringing up scanners without a
// database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
)

type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]attendance.Attendance

	// ExistsHook runs inside ExistsForIdentity before the lookup. Tests use it
	// to simulate a write landing between a read and an insert.
	ExistsHook func(date string, id attendance.Identity)
}

func NewAttendanceRepository(seed ...attendance.Attendance) *AttendanceRepository {
	r := &AttendanceRepository{records: make(map[string]attendance.Attendance)}
	for _, a := range seed {
		r.records[a.ID] = a
	}
	return r
}

func (r *AttendanceRepository) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	r.records[a.ID] = a
	return a, nil
}

func (r *AttendanceRepository) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *AttendanceRepository) where(match func(attendance.Attendance) bool) []attendance.Attendance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *AttendanceRepository) ListByDate(_ context.Context, date string) ([]attendance.Attendance, error) {
	return r.where(func(a attendance.Attendance) bool { return a.Date == date }), nil
}

func (r *AttendanceRepository) ListByMemberAndDate(_ context.Context, memberID, date string) ([]attendance.Attendance, error) {
	return r.where(func(a attendance.Attendance) bool { return a.Date == date && a.MemberID == memberID }), nil
}

func (r *AttendanceRepository) ListOpenByDate(_ context.Context, date string) ([]attendance.Attendance, error) {
	return r.where(func(a attendance.Attendance) bool {
		return a.Date == date && a.HasCheckIn() && !a.HasCheckOut()
	}), nil
}

func (r *AttendanceRepository) ExistsForIdentity(_ context.Context, date string, id attendance.Identity) (bool, error) {
	if r.ExistsHook != nil {
		r.ExistsHook(date, id)
	}
	found := r.where(func(a attendance.Attendance) bool {
		return a.Date == date && id.Matches(a.Identity())
	})
	return len(found) > 0, nil
}

func (r *AttendanceRepository) List(_ context.Context, f attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	out := r.where(func(a attendance.Attendance) bool {
		if f.MemberID != nil && *f.MemberID != "" && a.MemberID != *f.MemberID {
			return false
		}
		if f.Date != nil && *f.Date != "" && a.Date != *f.Date {
			return false
		}
		if f.StartDate != nil && *f.StartDate != "" && a.Date < *f.StartDate {
			return false
		}
		if f.EndDate != nil && *f.EndDate != "" && a.Date > *f.EndDate {
			return false
		}
		if f.Search != nil && *f.Search != "" {
			q := strings.ToLower(*f.Search)
			if !strings.Contains(strings.ToLower(a.MemberName), q) && !strings.Contains(strings.ToLower(a.StudentID), q) {
				return false
			}
		}
		return true
	})

	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortValue(out[i], f.SortBy), sortValue(out[j], f.SortBy)
		if f.SortOrder == "asc" {
			return a < b
		}
		return a > b
	})

	total := int64(len(out))
	if f.Limit > 0 {
		start := min((max(f.Page, 1)-1)*f.Limit, len(out))
		out = out[start:min(start+f.Limit, len(out))]
	}
	return out, total, nil
}

func sortValue(a attendance.Attendance, field string) string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	switch field {
	case "member_name":
		return a.MemberName
	case "check_in_time":
		return deref(a.CheckInTime)
	case "check_out_time":
		return deref(a.CheckOutTime)
	case "created_at":
		return a.CreatedAt.Format(time.RFC3339Nano)
	}
	return a.Date
}

func (r *AttendanceRepository) ListRange(_ context.Context, startDate, endDate string, memberID *string) ([]attendance.Attendance, error) {
	out := r.where(func(a attendance.Attendance) bool {
		if memberID != nil && *memberID != "" && a.MemberID != *memberID {
			return false
		}
		return a.Date >= startDate && a.Date <= endDate
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}

func (r *AttendanceRepository) Update(_ context.Context, a attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.records[a.ID] = a
	return nil
}

func (r *AttendanceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.records, id)
	return nil
}

// All returns every stored record, oldest first.
func (r *AttendanceRepository) All() []attendance.Attendance {
	return r.where(func(attendance.Attendance) bool { return true })
}

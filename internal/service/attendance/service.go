package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	member.MemberRepository
	policy attendance.Policy
	clock  clock.Clock
	events sse.Broadcaster
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	memberRepo member.MemberRepository,
	policy attendance.Policy,
	clk clock.Clock,
	events sse.Broadcaster,
) attendance.AttendanceService {
	if events == nil {
		events = sse.Nop{}
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		MemberRepository:     memberRepo,
		policy:               policy,
		clock:                clk,
		events:               events,
	}
}

// ListAttendance implements attendance.AttendanceService.
// The status filter applies to the derived status, so when it is set the
// whole SQL result is derived first and paginated here.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	now := s.clock.Now()

	if filter.Status == nil || *filter.Status == "" {
		records, total, err := s.AttendanceRepository.List(ctx, filter)
		if err != nil {
			return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
		}
		return buildList(s.policy.DeriveAll(records, now), total, filter), nil
	}

	want := attendance.Status(*filter.Status)
	unpaged := filter
	unpaged.Page, unpaged.Limit = 1, 0
	records, _, err := s.AttendanceRepository.List(ctx, unpaged)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	matched := make([]attendance.View, 0, len(records))
	for _, v := range s.policy.DeriveAll(records, now) {
		if v.Status == want {
			matched = append(matched, v)
		}
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+filter.Limit, len(matched))
	return buildList(matched[start:end], total, filter), nil
}

func buildList(views []attendance.View, total int64, filter attendance.AttendanceFilter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, attendance.NewAttendanceResponse(v))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 || len(views) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// ListToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListToday(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	now := s.clock.Now()
	records, err := s.AttendanceRepository.ListByDate(ctx, clock.DateString(now))
	if err != nil {
		return nil, fmt.Errorf("failed to list today's attendance: %w", err)
	}

	views := s.policy.DeriveAll(records, now)
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Record.CheckInTime, views[j].Record.CheckInTime
		switch {
		case a == nil || *a == "":
			return false
		case b == nil || *b == "":
			return true
		}
		return *a < *b
	})

	responses := make([]attendance.AttendanceResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, attendance.NewAttendanceResponse(v))
	}
	return responses, nil
}

// ListMemberAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMemberAttendance(ctx context.Context, memberID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if _, err := s.MemberRepository.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return attendance.ListAttendanceResponse{}, member.ErrMemberNotFound
		}
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	filter.MemberID = &memberID
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter)
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return attendance.NewAttendanceResponse(s.policy.Derive(rec, s.clock.Now())), nil
}

// CreateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CreateAttendance(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	m, err := s.MemberRepository.GetByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return attendance.AttendanceResponse{}, member.ErrMemberNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	existing, err := s.AttendanceRepository.ListByMemberAndDate(ctx, m.ID, req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if len(existing) > 0 {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceExists
	}

	now := s.clock.Now()
	rec := attendance.Attendance{
		ID:           uuid.Must(uuid.NewV7()).String(),
		MemberID:     m.ID,
		MemberName:   m.Name,
		StudentID:    m.StudentID,
		RFIDID:       m.RFIDID,
		Date:         req.Date,
		CheckInTime:  normalizeTime(req.CheckInTime),
		CheckOutTime: normalizeTime(req.CheckOutTime),
		Source:       attendance.SourceManual,
		Notes:        trimmed(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	recompute(&rec, s.policy, now)

	created, err := s.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	resp := attendance.NewAttendanceResponse(s.policy.Derive(created, now))
	s.events.Broadcast(sse.NewEvent(sse.EventAttendance, map[string]any{"action": "created", "attendance": resp}))
	return resp, nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if req.CheckInTime != nil {
		rec.CheckInTime = normalizeTime(req.CheckInTime)
	}
	if req.ClearCheckIn {
		rec.CheckInTime = nil
	}
	if req.CheckOutTime != nil {
		rec.CheckOutTime = normalizeTime(req.CheckOutTime)
	}
	if req.ClearCheckOut {
		rec.CheckOutTime = nil
	}
	if req.Notes != nil {
		rec.Notes = trimmed(req.Notes)
	}

	if rec.HasCheckOut() && !rec.HasCheckIn() {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "check_in_time",
			Message: "check_in_time is required when check_out_time is set",
		}}
	}

	now := s.clock.Now()
	recompute(&rec, s.policy, now)
	rec.UpdatedAt = now

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	resp := attendance.NewAttendanceResponse(s.policy.Derive(rec, now))
	s.events.Broadcast(sse.NewEvent(sse.EventAttendance, map[string]any{"action": "updated", "attendance": resp}))
	return resp, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	s.events.Broadcast(sse.NewEvent(sse.EventAttendance, map[string]any{"action": "deleted", "id": id}))
	return nil
}

// recompute refreshes the duration and the stored status snapshot.
func recompute(rec *attendance.Attendance, policy attendance.Policy, now time.Time) {
	rec.Duration = nil
	if rec.HasCheckIn() && rec.HasCheckOut() {
		rec.Duration = attendance.Duration(*rec.CheckInTime, *rec.CheckOutTime)
	}
	rec.Status = policy.Derive(*rec, now).Status
}

// normalizeTime stores HH:MM input as HH:MM:SS.
func normalizeTime(t *string) *string {
	if t == nil || strings.TrimSpace(*t) == "" {
		return nil
	}
	tod, err := clock.ParseTimeOfDay(*t)
	if err != nil {
		return nil
	}
	v := tod.String()
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

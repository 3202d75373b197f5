package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/notification"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
)

// Config holds scan ingestion settings.
type Config struct {
	Policy attendance.Policy
	Clock  clock.Clock
	Logger *slog.Logger
}

type ScanServiceImpl struct {
	member.MemberRepository
	attendance.AttendanceRepository
	logs     scan.LogRepository
	counters scan.CounterRepository
	devices  device.DeviceRepository
	effects  notification.Dispatcher
	events   sse.Broadcaster

	policy attendance.Policy
	clock  clock.Clock
	logger *slog.Logger
}

// NewScanService wires the ingestion handler. counters, devices and events
// may be nil; their updates are best effort anyway.
func NewScanService(
	memberRepo member.MemberRepository,
	attendanceRepo attendance.AttendanceRepository,
	logRepo scan.LogRepository,
	counterRepo scan.CounterRepository,
	deviceRepo device.DeviceRepository,
	effects notification.Dispatcher,
	events sse.Broadcaster,
	cfg Config,
) scan.ScanService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New(cfg.Policy.Location)
	}
	if events == nil {
		events = sse.Nop{}
	}
	return &ScanServiceImpl{
		MemberRepository:     memberRepo,
		AttendanceRepository: attendanceRepo,
		logs:                 logRepo,
		counters:             counterRepo,
		devices:              deviceRepo,
		effects:              effects,
		events:               events,
		policy:               cfg.Policy,
		clock:                cfg.Clock,
		logger:               cfg.Logger,
	}
}

// Reject implements scan.ScanService.
func (s *ScanServiceImpl) Reject(ctx context.Context, deviceID, reason string) {
	req := scan.ScanRequest{DeviceID: deviceID}
	s.writeLog(ctx, req, s.clock.Now(), outcome{class: scan.ClassRejected, message: reason})
}

// outcome is what a single read resolved to. Ingest turns it into exactly one
// scan log entry.
type outcome struct {
	class      scan.Classification
	message    string
	member     *member.Member
	attendance *attendance.Attendance
	err        error
}

// Ingest implements scan.ScanService.
func (s *ScanServiceImpl) Ingest(ctx context.Context, req scan.ScanRequest) (scan.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		s.writeLog(ctx, req, s.clock.Now(), outcome{class: scan.ClassRejected, message: err.Error()})
		return scan.ScanResponse{}, err
	}

	now := s.clock.Now()
	if !req.ScannedAt.IsZero() {
		now = req.ScannedAt.In(s.clock.Location())
	}

	out := s.resolve(ctx, req, now)
	s.writeLog(ctx, req, now, out)

	if out.err != nil {
		return scan.ScanResponse{Action: out.class, Message: out.message, MemberName: memberName(out.member)}, out.err
	}

	resp := scan.ScanResponse{
		Action:     out.class,
		Message:    out.message,
		MemberName: out.member.Name,
	}
	view := s.policy.Derive(*out.attendance, now)
	ar := attendance.NewAttendanceResponse(view)
	resp.Attendance = &ar

	s.afterSuccess(req.DeviceID, clock.DateString(now), now, out.class, resp)
	return resp, nil
}

func (s *ScanServiceImpl) resolve(ctx context.Context, req scan.ScanRequest, now time.Time) outcome {
	m, err := s.MemberRepository.GetByRFID(ctx, req.RFIDID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return outcome{class: scan.ClassUnknown, message: "card not registered", err: scan.ErrUnknownCard}
		}
		return outcome{class: scan.ClassRejected, message: "member lookup failed", err: fmt.Errorf("failed to get member by rfid: %w", err)}
	}
	if !m.IsActive() {
		return outcome{class: scan.ClassRejected, message: member.ErrMemberInactive.Error(), member: &m, err: member.ErrMemberInactive}
	}

	date := clock.DateString(now)
	records, err := s.AttendanceRepository.ListByMemberAndDate(ctx, m.ID, date)
	if err != nil {
		return outcome{class: scan.ClassRejected, message: "attendance lookup failed", member: &m, err: fmt.Errorf("failed to get attendance: %w", err)}
	}

	rec, found := attendance.Authoritative(records)
	if !found {
		return s.checkIn(ctx, m, date, now)
	}

	switch {
	case rec.HasCheckOut():
		return outcome{class: scan.ClassRejected, message: attendance.ErrAlreadyCheckedOut.Error(), member: &m, attendance: &rec, err: attendance.ErrAlreadyCheckedOut}
	case !rec.HasCheckIn():
		return s.fillCheckIn(ctx, m, rec, now)
	default:
		return s.checkOut(ctx, m, rec, now)
	}
}

func (s *ScanServiceImpl) checkIn(ctx context.Context, m member.Member, date string, now time.Time) outcome {
	checkIn := clock.TimeString(now)
	rec := attendance.Attendance{
		ID:          uuid.Must(uuid.NewV7()).String(),
		MemberID:    m.ID,
		MemberName:  m.Name,
		StudentID:   m.StudentID,
		RFIDID:      m.RFIDID,
		Date:        date,
		CheckInTime: &checkIn,
		Source:      attendance.SourceRFID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec.Status = s.policy.Resolve(rec.CheckInTime, nil, date, now)

	created, err := s.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return outcome{class: scan.ClassRejected, message: "failed to record check-in", member: &m, err: fmt.Errorf("failed to create attendance: %w", err)}
	}
	return outcome{class: scan.ClassCheckIn, message: "check-in recorded at " + checkIn, member: &m, attendance: &created}
}

// fillCheckIn completes a placeholder record that has no check-in yet, such
// as a manual entry or a synthesized absence.
func (s *ScanServiceImpl) fillCheckIn(ctx context.Context, m member.Member, rec attendance.Attendance, now time.Time) outcome {
	checkIn := clock.TimeString(now)
	rec.CheckInTime = &checkIn
	rec.Status = s.policy.Resolve(rec.CheckInTime, nil, rec.Date, now)
	rec.UpdatedAt = now

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return outcome{class: scan.ClassRejected, message: "failed to record check-in", member: &m, err: fmt.Errorf("failed to update attendance: %w", err)}
	}
	return outcome{class: scan.ClassCheckIn, message: "check-in recorded at " + checkIn, member: &m, attendance: &rec}
}

func (s *ScanServiceImpl) checkOut(ctx context.Context, m member.Member, rec attendance.Attendance, now time.Time) outcome {
	if s.policy.CutoffPassed(rec.Date, now) {
		return outcome{class: scan.ClassRejected, message: attendance.ErrCheckoutPastCutoff.Error(), member: &m, attendance: &rec, err: attendance.ErrCheckoutPastCutoff}
	}

	checkOut := clock.TimeString(now)
	elapsed, ok := attendance.ElapsedMinutes(*rec.CheckInTime, checkOut)
	if !ok {
		return outcome{class: scan.ClassRejected, message: attendance.ErrInvalidTime.Error(), member: &m, attendance: &rec, err: attendance.ErrInvalidTime}
	}

	minimum := int(math.Ceil(s.policy.MinimumDuration.Minutes()))
	if elapsed < minimum {
		err := &attendance.MinimumDurationError{Minimum: minimum, Elapsed: elapsed, Remaining: minimum - elapsed}
		return outcome{class: scan.ClassRejected, message: err.Error(), member: &m, attendance: &rec, err: err}
	}

	rec.CheckOutTime = &checkOut
	rec.Duration = attendance.Duration(*rec.CheckInTime, checkOut)
	rec.Status = attendance.StatusHadir
	rec.UpdatedAt = now

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return outcome{class: scan.ClassRejected, message: "failed to record check-out", member: &m, err: fmt.Errorf("failed to update attendance: %w", err)}
	}
	return outcome{class: scan.ClassCheckOut, message: "check-out recorded at " + checkOut, member: &m, attendance: &rec}
}

// writeLog stores the audit entry. A failure here is logged and swallowed so
// it never changes the outcome of the read.
func (s *ScanServiceImpl) writeLog(ctx context.Context, req scan.ScanRequest, now time.Time, out outcome) {
	entry := scan.Log{
		ID:             uuid.Must(uuid.NewV7()).String(),
		RFIDID:         req.RFIDID,
		DeviceID:       req.DeviceID,
		ScannedAt:      now,
		Classification: out.class,
		Message:        out.message,
		CreatedAt:      now,
	}
	if out.member != nil {
		entry.MemberID = &out.member.ID
		entry.MemberName = &out.member.Name
	}
	if out.attendance != nil {
		entry.AttendanceID = &out.attendance.ID
	}

	if _, err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write scan log",
			"rfid_id", req.RFIDID,
			"device_id", req.DeviceID,
			"classification", out.class,
			"error", err,
		)
	}
}

func (s *ScanServiceImpl) afterSuccess(deviceID, date string, now time.Time, class scan.Classification, resp scan.ScanResponse) {
	if s.effects == nil {
		return
	}
	if s.devices != nil && deviceID != "" {
		s.effects.Dispatch(notification.Task{Name: "device.touch_scan", Run: func(ctx context.Context) error {
			return s.devices.TouchScan(ctx, deviceID, now)
		}})
	}
	if s.counters != nil {
		s.effects.Dispatch(notification.Task{Name: "live.increment", Run: func(ctx context.Context) error {
			return s.counters.Increment(ctx, date, class)
		}})
	}
	s.effects.Dispatch(notification.Task{Name: "stream.scan", Run: func(context.Context) error {
		s.events.Broadcast(sse.NewEvent(sse.EventScan, resp))
		return nil
	}})
}

// ListLogs implements scan.ScanService.
func (s *ScanServiceImpl) ListLogs(ctx context.Context, filter scan.ScanLogFilter) (scan.ListScanLogResponse, error) {
	if err := filter.Validate(); err != nil {
		return scan.ListScanLogResponse{}, err
	}

	logs, total, err := s.logs.List(ctx, filter, s.clock.Location())
	if err != nil {
		return scan.ListScanLogResponse{}, fmt.Errorf("failed to list scan logs: %w", err)
	}

	responses := make([]scan.ScanLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, ToLogResponse(l, s.clock.Location()))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 || len(logs) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return scan.ListScanLogResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Logs:       responses,
	}, nil
}

// ToLogResponse formats a scan log in the service zone.
func ToLogResponse(l scan.Log, loc *time.Location) scan.ScanLogResponse {
	return scan.ScanLogResponse{
		ID:             l.ID,
		RFIDID:         l.RFIDID,
		DeviceID:       l.DeviceID,
		ScannedAt:      l.ScannedAt.In(loc).Format(time.RFC3339),
		MemberID:       l.MemberID,
		MemberName:     l.MemberName,
		AttendanceID:   l.AttendanceID,
		Classification: l.Classification,
		Message:        l.Message,
	}
}

func memberName(m *member.Member) string {
	if m == nil {
		return ""
	}
	return m.Name
}

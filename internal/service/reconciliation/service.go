package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

const (
	reasonAutoCheckout = "no check-out before the daily cutoff"
	reasonAbsence      = "scheduled duty day without any scan"

	defaultLeaseTTL = reconciliation.RunTimeout + 5*time.Minute
)

// Config holds engine settings.
type Config struct {
	Policy   attendance.Policy
	Clock    clock.Clock
	Logger   *slog.Logger
	LeaseTTL time.Duration
}

// Engine reconciles one day of attendance. The mutex only guards this
// process; set a Locker to keep several instances from running together.
type Engine struct {
	attendance.AttendanceRepository
	member.MemberRepository
	locker reconciliation.Locker
	events sse.Broadcaster

	policy   attendance.Policy
	clock    clock.Clock
	logger   *slog.Logger
	leaseTTL time.Duration

	mu sync.Mutex
}

func NewEngine(
	attendanceRepo attendance.AttendanceRepository,
	memberRepo member.MemberRepository,
	locker reconciliation.Locker,
	events sse.Broadcaster,
	cfg Config,
) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New(cfg.Policy.Location)
	}
	// A lease that expires mid-run would let a second instance start.
	if cfg.LeaseTTL < reconciliation.RunTimeout {
		cfg.LeaseTTL = defaultLeaseTTL
	}
	if events == nil {
		events = sse.Nop{}
	}
	return &Engine{
		AttendanceRepository: attendanceRepo,
		MemberRepository:     memberRepo,
		locker:               locker,
		events:               events,
		policy:               cfg.Policy,
		clock:                cfg.Clock,
		logger:               cfg.Logger,
		leaseTTL:             cfg.LeaseTTL,
	}
}

var _ reconciliation.Engine = (*Engine)(nil)

// acquire takes the in-process mutex and, when configured, the shared lease.
// A lease backend error is logged and the run continues on the local guard.
func (e *Engine) acquire(ctx context.Context) (func(), error) {
	if !e.mu.TryLock() {
		return nil, reconciliation.ErrAlreadyRunning
	}
	if e.locker == nil {
		return e.mu.Unlock, nil
	}

	acquired, release, err := e.locker.Acquire(ctx, e.leaseTTL)
	if err != nil {
		e.logger.Warn("reconciliation lease unavailable, continuing with local guard", "error", err)
		return e.mu.Unlock, nil
	}
	if !acquired {
		e.mu.Unlock()
		return nil, reconciliation.ErrAlreadyRunning
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(rctx); err != nil {
			e.logger.Warn("failed to release reconciliation lease", "error", err)
		}
		e.mu.Unlock()
	}, nil
}

func (e *Engine) targetDate(date string) (string, error) {
	if date == "" {
		return clock.DateString(e.clock.Now()), nil
	}
	if _, ok := validator.IsValidDate(date); !ok {
		return "", reconciliation.ErrInvalidDate
	}
	return date, nil
}

// Run executes duplicate cleanup, forced checkout and absence synthesis in
// that order for date (today when empty).
func (e *Engine) Run(ctx context.Context, date string, trigger reconciliation.Trigger) (reconciliation.RunResult, error) {
	date, err := e.targetDate(date)
	if err != nil {
		return reconciliation.RunResult{}, err
	}
	release, err := e.acquire(ctx)
	if err != nil {
		return reconciliation.RunResult{}, err
	}
	defer release()

	result := reconciliation.RunResult{Date: date, Trigger: trigger, StartedAt: e.clock.Now()}
	e.logger.Info("reconciliation started", "date", date, "trigger", trigger)

	if result.Duplicates, err = e.cleanupDuplicates(ctx, date); err != nil {
		return result, err
	}
	if result.AutoCheckout, err = e.autoCheckout(ctx, date); err != nil {
		return result, err
	}
	if result.Absences, err = e.synthesizeAbsences(ctx, date); err != nil {
		return result, err
	}

	result.FinishedAt = e.clock.Now()
	e.logger.Info("reconciliation finished",
		"date", date,
		"trigger", trigger,
		"duplicates_deleted", result.Duplicates.Deleted,
		"auto_checked_out", result.AutoCheckout.Updated,
		"absences_created", result.Absences.Created,
	)
	e.events.Broadcast(sse.NewEvent(sse.EventReconciliation, result))
	return result, nil
}

// CleanupDuplicates implements reconciliation.Engine.
func (e *Engine) CleanupDuplicates(ctx context.Context, date string) (reconciliation.DuplicateResult, error) {
	date, err := e.targetDate(date)
	if err != nil {
		return reconciliation.DuplicateResult{}, err
	}
	release, err := e.acquire(ctx)
	if err != nil {
		return reconciliation.DuplicateResult{}, err
	}
	defer release()

	res, err := e.cleanupDuplicates(ctx, date)
	if err == nil {
		e.events.Broadcast(sse.NewEvent(sse.EventReconciliation, map[string]any{"phase": reconciliation.PhaseDuplicates, "result": res}))
	}
	return res, err
}

// AutoCheckout implements reconciliation.Engine.
func (e *Engine) AutoCheckout(ctx context.Context, date string) (reconciliation.AutoCheckoutResult, error) {
	date, err := e.targetDate(date)
	if err != nil {
		return reconciliation.AutoCheckoutResult{}, err
	}
	release, err := e.acquire(ctx)
	if err != nil {
		return reconciliation.AutoCheckoutResult{}, err
	}
	defer release()

	res, err := e.autoCheckout(ctx, date)
	if err == nil {
		e.events.Broadcast(sse.NewEvent(sse.EventReconciliation, map[string]any{"phase": reconciliation.PhaseAutoCheckout, "result": res}))
	}
	return res, err
}

// SynthesizeAbsences implements reconciliation.Engine.
func (e *Engine) SynthesizeAbsences(ctx context.Context, date string) (reconciliation.AbsenceResult, error) {
	date, err := e.targetDate(date)
	if err != nil {
		return reconciliation.AbsenceResult{}, err
	}
	release, err := e.acquire(ctx)
	if err != nil {
		return reconciliation.AbsenceResult{}, err
	}
	defer release()

	res, err := e.synthesizeAbsences(ctx, date)
	if err == nil {
		e.events.Broadcast(sse.NewEvent(sse.EventReconciliation, map[string]any{"phase": reconciliation.PhaseAbsences, "result": res}))
	}
	return res, err
}

// cleanupDuplicates keeps the best record per member and deletes the rest.
// Records without any identity field are left alone.
func (e *Engine) cleanupDuplicates(ctx context.Context, date string) (reconciliation.DuplicateResult, error) {
	res := reconciliation.DuplicateResult{Date: date, Kept: []string{}}

	records, err := e.AttendanceRepository.ListByDate(ctx, date)
	if err != nil {
		return res, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}
	res.Processed = len(records)

	groups, order, _ := attendance.Group(records)
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		res.Groups++

		ranked := attendance.Rank(group)
		res.Kept = append(res.Kept, ranked[0].ID)
		for _, dup := range ranked[1:] {
			if err := e.AttendanceRepository.Delete(ctx, dup.ID); err != nil {
				if errors.Is(err, attendance.ErrAttendanceNotFound) {
					continue
				}
				res.Failed++
				e.logger.Error("failed to delete duplicate attendance", "id", dup.ID, "member_key", key.String(), "error", err)
				continue
			}
			res.Deleted++
		}
	}
	return res, nil
}

// autoCheckout marks open records whose cutoff has passed as missed. The
// check-out time stays empty; no check-out is invented.
func (e *Engine) autoCheckout(ctx context.Context, date string) (reconciliation.AutoCheckoutResult, error) {
	res := reconciliation.AutoCheckoutResult{Date: date, UpdatedIDs: []string{}}

	open, err := e.AttendanceRepository.ListOpenByDate(ctx, date)
	if err != nil {
		return res, fmt.Errorf("failed to list open attendance for %s: %w", date, err)
	}
	res.Processed = len(open)

	now := e.clock.Now()
	for _, rec := range open {
		if rec.AutoCheckedOut && rec.Status == attendance.StatusTidakPiket {
			res.Skipped++
			continue
		}
		if e.policy.Resolve(rec.CheckInTime, rec.CheckOutTime, rec.Date, now) == attendance.StatusSedangPiket {
			res.Skipped++
			continue
		}

		reason := reasonAutoCheckout
		stamped := now
		rec.Status = attendance.StatusTidakPiket
		rec.AutoCheckedOut = true
		rec.AutoCheckoutReason = &reason
		rec.AutoCheckedOutAt = &stamped
		rec.UpdatedAt = now

		if err := e.AttendanceRepository.Update(ctx, rec); err != nil {
			res.Failed++
			e.logger.Error("failed to auto check out attendance", "id", rec.ID, "member_id", rec.MemberID, "error", err)
			continue
		}
		res.Updated++
		res.UpdatedIDs = append(res.UpdatedIDs, rec.ID)
	}
	return res, nil
}

// synthesizeAbsences records Tidak Hadir for every active member scheduled on
// the date's weekday who has no record. It does nothing before the cutoff.
func (e *Engine) synthesizeAbsences(ctx context.Context, date string) (reconciliation.AbsenceResult, error) {
	res := reconciliation.AbsenceResult{Date: date, CreatedFor: []string{}}

	weekday, err := clock.WeekdayOf(date)
	if err != nil {
		return res, reconciliation.ErrInvalidDate
	}
	res.Weekday = weekday

	now := e.clock.Now()
	if !e.policy.CutoffPassed(date, now) {
		res.SkippedReason = "cutoff for " + date + " has not passed yet"
		return res, nil
	}

	scheduled, err := e.MemberRepository.ListActiveByDutyDay(ctx, weekday)
	if err != nil {
		return res, fmt.Errorf("failed to list members on duty %s: %w", weekday, err)
	}
	res.Scheduled = len(scheduled)

	records, err := e.AttendanceRepository.ListByDate(ctx, date)
	if err != nil {
		return res, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}

	for _, m := range scheduled {
		id := m.Identity()
		if hasRecord(records, id) {
			res.Present++
			continue
		}

		// A scan may have landed since the list above.
		exists, err := e.AttendanceRepository.ExistsForIdentity(ctx, date, id)
		if err != nil {
			res.Failed++
			e.logger.Error("failed to re-check attendance before absence insert", "member_id", m.ID, "error", err)
			continue
		}
		if exists {
			res.Present++
			continue
		}

		reason := reasonAbsence
		stamped := now
		absence := attendance.Attendance{
			ID:                  uuid.Must(uuid.NewV7()).String(),
			MemberID:            m.ID,
			MemberName:          m.Name,
			StudentID:           m.StudentID,
			RFIDID:              m.RFIDID,
			Date:                date,
			Status:              attendance.StatusTidakHadir,
			Source:              attendance.SourceSystem,
			AutoGenerated:       true,
			AutoGeneratedReason: &reason,
			AutoGeneratedAt:     &stamped,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		created, err := e.AttendanceRepository.Create(ctx, absence)
		if err != nil {
			res.Failed++
			e.logger.Error("failed to create absence", "member_id", m.ID, "date", date, "error", err)
			continue
		}
		records = append(records, created)
		res.Created++
		res.CreatedFor = append(res.CreatedFor, m.ID)
	}
	return res, nil
}

func hasRecord(records []attendance.Attendance, id attendance.Identity) bool {
	for _, r := range records {
		if id.Matches(r.Identity()) {
			return true
		}
	}
	return false
}

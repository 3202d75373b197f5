package attendance

import (
	"time"

	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

// Status is the piket state of a record as shown to users.
type Status string

const (
	StatusBelumPiket  Status = "Belum Piket"  // not reported yet
	StatusSedangPiket Status = "Sedang Piket" // checked in, cutoff not reached
	StatusHadir       Status = "Hadir"        // checked out
	StatusTidakPiket  Status = "Tidak Piket"  // cutoff passed without a check-out
	StatusTidakHadir  Status = "Tidak Hadir"  // absence synthesized by reconciliation
)

// AllStatuses lists the statuses in display order.
func AllStatuses() []Status {
	return []Status{
		StatusBelumPiket,
		StatusSedangPiket,
		StatusHadir,
		StatusTidakPiket,
		StatusTidakHadir,
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, v := range AllStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

const (
	DefaultCutoff          = "18:00:00"
	DefaultMinimumDuration = time.Hour
)

// Policy carries the daily rules shared by the resolver, the scan handler and
// the reconciliation engine.
type Policy struct {
	Cutoff          clock.TimeOfDay
	MinimumDuration time.Duration
	Location        *time.Location
}

// DefaultPolicy is an 18:00 cutoff, one hour minimum, Asia/Jakarta.
func DefaultPolicy() Policy {
	cutoff, _ := clock.ParseTimeOfDay(DefaultCutoff)
	return Policy{
		Cutoff:          cutoff,
		MinimumDuration: DefaultMinimumDuration,
		Location:        clock.MustLoadLocation(clock.DefaultTimezone),
	}
}

func (p Policy) location(now time.Time) *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return now.Location()
}

// CutoffAt returns the cutoff instant on date.
func (p Policy) CutoffAt(date string) (time.Time, error) {
	return clock.On(date, p.Cutoff, p.location(time.Time{}))
}

// CutoffPassed reports whether now is at or after the cutoff on date.
// An unparseable date is treated as not yet past the cutoff.
func (p Policy) CutoffPassed(date string, now time.Time) bool {
	at, err := clock.On(date, p.Cutoff, p.location(now))
	if err != nil {
		return false
	}
	return !now.Before(at)
}

// Resolve computes the status from the record's times and the current time.
// A completed check-out always wins; otherwise the cutoff on the record's
// date decides between the in-progress and the missed states.
func (p Policy) Resolve(checkIn, checkOut *string, date string, now time.Time) Status {
	if present(checkOut) {
		return StatusHadir
	}
	passed := p.CutoffPassed(date, now)
	if present(checkIn) {
		if passed {
			return StatusTidakPiket
		}
		return StatusSedangPiket
	}
	if passed {
		return StatusTidakPiket
	}
	return StatusBelumPiket
}

// Resolve is the package-level form of Policy.Resolve, evaluated in now's zone.
func Resolve(checkIn, checkOut *string, date string, now time.Time, cutoff clock.TimeOfDay) Status {
	return Policy{Cutoff: cutoff, Location: now.Location()}.Resolve(checkIn, checkOut, date, now)
}

// View is an attendance record with its status derived at read time.
// Build API output from a View, never from Attendance.Status directly.
type View struct {
	Record Attendance
	Status Status
}

// Stale reports whether the stored snapshot differs from the derived status.
func (v View) Stale() bool {
	return v.Record.Status != v.Status
}

// Derive recomputes the record's status for now. An explicit absence with no
// recorded times keeps Tidak Hadir; every other stored status is ignored.
func (p Policy) Derive(rec Attendance, now time.Time) View {
	if rec.Status == StatusTidakHadir && !rec.HasCheckIn() && !rec.HasCheckOut() {
		return View{Record: rec, Status: StatusTidakHadir}
	}
	return View{Record: rec, Status: p.Resolve(rec.CheckInTime, rec.CheckOutTime, rec.Date, now)}
}

// DeriveAll maps Derive over records.
func (p Policy) DeriveAll(records []Attendance, now time.Time) []View {
	views := make([]View, 0, len(records))
	for _, rec := range records {
		views = append(views, p.Derive(rec, now))
	}
	return views
}

package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Scan errors
	ErrAlreadyCheckedOut  = errors.New("already checked out for today")
	ErrCheckoutPastCutoff = errors.New("check-out is not allowed after the daily cutoff")
	ErrMinimumDuration    = errors.New("minimum piket duration not reached")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance record already exists for this member and date")
	ErrInvalidTime        = errors.New("time must be in HH:MM:SS format")
)

// MinimumDurationError is returned when a check-out comes before the minimum
// piket duration. It matches ErrMinimumDuration with errors.Is.
type MinimumDurationError struct {
	Minimum   int // minutes
	Elapsed   int // minutes
	Remaining int // minutes
}

func (e *MinimumDurationError) Error() string {
	return fmt.Sprintf("minimum piket duration is %d minutes, %d minutes remaining", e.Minimum, e.Remaining)
}

func (e *MinimumDurationError) Is(target error) bool {
	return target == ErrMinimumDuration
}

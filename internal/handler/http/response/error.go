package response

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
	"github.com/reslab/attendance-backend-go/internal/domain/report"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

var exposeInternal atomic.Bool

// ExposeInternalErrors makes 500 responses carry the raw error text.
// Only enabled in development.
func ExposeInternalErrors(v bool) {
	exposeInternal.Store(v)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var durationErr *attendance.MinimumDurationError
	if errors.As(err, &durationErr) {
		BadRequest(w, durationErr.Error(), map[string]string{
			"minimum_minutes":   strconv.Itoa(durationErr.Minimum),
			"elapsed_minutes":   strconv.Itoa(durationErr.Elapsed),
			"remaining_minutes": strconv.Itoa(durationErr.Remaining),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAccountLocked):
		TooManyRequests(w, err.Error())
	case errors.Is(err, auth.ErrAdminNotFound):
		NotFound(w, "Admin not found")
	case errors.Is(err, auth.ErrUsernameExists):
		Conflict(w, "Username already exists")

	// Member domain errors
	case errors.Is(err, member.ErrMemberNotFound):
		NotFound(w, "Member not found")
	case errors.Is(err, member.ErrRFIDExists):
		Conflict(w, err.Error())
	case errors.Is(err, member.ErrStudentIDExists):
		Conflict(w, "Student ID already registered")
	case errors.Is(err, member.ErrMemberAlreadyActive),
		errors.Is(err, member.ErrMemberAlreadyInactive):
		Conflict(w, err.Error())
	case errors.Is(err, member.ErrMemberInactive),
		errors.Is(err, member.ErrInvalidDutyDay):
		BadRequest(w, err.Error(), nil)

	// Scan errors
	case errors.Is(err, scan.ErrUnknownCard):
		NotFound(w, "RFID card is not registered")
	case errors.Is(err, scan.ErrInvalidRFID),
		errors.Is(err, scan.ErrInvalidDeviceID):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrCheckoutPastCutoff),
		errors.Is(err, attendance.ErrMinimumDuration),
		errors.Is(err, attendance.ErrInvalidTime):
		BadRequest(w, err.Error(), nil)

	// Device errors
	case errors.Is(err, device.ErrDeviceNotFound):
		NotFound(w, "Device not found")
	case errors.Is(err, device.ErrInvalidDevice):
		BadRequest(w, err.Error(), nil)

	// Reconciliation and reports
	case errors.Is(err, reconciliation.ErrAlreadyRunning):
		Conflict(w, err.Error())
	case errors.Is(err, reconciliation.ErrInvalidDate),
		errors.Is(err, report.ErrRangeTooLarge):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		if exposeInternal.Load() {
			InternalServerError(w, err.Error())
			return
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}

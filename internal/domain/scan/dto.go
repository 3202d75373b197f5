package scan

import (
	"strings"
	"time"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

// ScanRequest is the payload posted by a scanner.
type ScanRequest struct {
	RFIDID   string `json:"rfidId"`
	DeviceID string `json:"deviceId"`
	// Timestamp is optional ISO-8601; the server clock is used when empty.
	Timestamp string `json:"timestamp,omitempty"`

	ScannedAt time.Time `json:"-"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	r.RFIDID = strings.ToUpper(strings.TrimSpace(r.RFIDID))
	r.DeviceID = strings.TrimSpace(r.DeviceID)

	if validator.IsEmpty(r.RFIDID) {
		errs = append(errs, validator.ValidationError{Field: "rfidId", Message: ErrInvalidRFID.Error()})
	} else if !validator.IsValidRFID(r.RFIDID) {
		errs = append(errs, validator.ValidationError{Field: "rfidId", Message: "rfidId must be a valid RFID tag id"})
	}

	if validator.IsEmpty(r.DeviceID) {
		errs = append(errs, validator.ValidationError{Field: "deviceId", Message: ErrInvalidDeviceID.Error()})
	}

	if r.Timestamp != "" {
		t, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be ISO-8601 (RFC 3339)"})
		} else {
			r.ScannedAt = t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ScanResponse is returned to the scanner, which shows Message on its display.
type ScanResponse struct {
	Action     Classification                 `json:"action"`
	Message    string                         `json:"message"`
	MemberName string                         `json:"member_name"`
	Attendance *attendance.AttendanceResponse `json:"attendance,omitempty"`
}

type ScanLogResponse struct {
	ID             string         `json:"id"`
	RFIDID         string         `json:"rfid_id"`
	DeviceID       string         `json:"device_id"`
	ScannedAt      string         `json:"scanned_at"`
	MemberID       *string        `json:"member_id"`
	MemberName     *string        `json:"member_name"`
	AttendanceID   *string        `json:"attendance_id,omitempty"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
}

type ScanLogFilter struct {
	DeviceID       *string `json:"device_id,omitempty"`
	RFIDID         *string `json:"rfid_id,omitempty"`
	MemberID       *string `json:"member_id,omitempty"`
	Classification *string `json:"classification,omitempty"`
	Date           *string `json:"date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ScanLogFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 200"})
	}

	if f.Classification != nil && *f.Classification != "" {
		valid := []string{string(ClassCheckIn), string(ClassCheckOut), string(ClassRejected), string(ClassUnknown)}
		if !validator.IsInSlice(*f.Classification, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "classification",
				Message: "classification must be one of: " + strings.Join(valid, ", "),
			})
		}
	}

	if f.Date != nil && *f.Date != "" {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListScanLogResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Logs       []ScanLogResponse `json:"logs"`
}

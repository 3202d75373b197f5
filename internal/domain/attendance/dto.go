package attendance

import (
	"strings"
	"time"

	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type AttendanceResponse struct {
	ID                  string  `json:"id"`
	MemberID            string  `json:"member_id"`
	MemberName          string  `json:"member_name"`
	StudentID           string  `json:"student_id"`
	RFIDID              string  `json:"rfid_id"`
	Date                string  `json:"date"`
	CheckInTime         *string `json:"check_in_time"`
	CheckOutTime        *string `json:"check_out_time"`
	Duration            *string `json:"duration"`
	Status              Status  `json:"status"`
	Source              Source  `json:"source"`
	Notes               *string `json:"notes,omitempty"`
	AutoGenerated       bool    `json:"auto_generated"`
	AutoGeneratedReason *string `json:"auto_generated_reason,omitempty"`
	AutoGeneratedAt     *string `json:"auto_generated_at,omitempty"`
	AutoCheckedOut      bool    `json:"auto_checked_out"`
	AutoCheckoutReason  *string `json:"auto_checkout_reason,omitempty"`
	AutoCheckedOutAt    *string `json:"auto_checked_out_at,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timestampLayout)
	return &s
}

// NewAttendanceResponse builds the API shape from a derived view. The status
// in the response is always the derived one.
func NewAttendanceResponse(v View) AttendanceResponse {
	rec := v.Record
	return AttendanceResponse{
		ID:                  rec.ID,
		MemberID:            rec.MemberID,
		MemberName:          rec.MemberName,
		StudentID:           rec.StudentID,
		RFIDID:              rec.RFIDID,
		Date:                rec.Date,
		CheckInTime:         rec.CheckInTime,
		CheckOutTime:        rec.CheckOutTime,
		Duration:            rec.Duration,
		Status:              v.Status,
		Source:              rec.Source,
		Notes:               rec.Notes,
		AutoGenerated:       rec.AutoGenerated,
		AutoGeneratedReason: rec.AutoGeneratedReason,
		AutoGeneratedAt:     formatTimestamp(rec.AutoGeneratedAt),
		AutoCheckedOut:      rec.AutoCheckedOut,
		AutoCheckoutReason:  rec.AutoCheckoutReason,
		AutoCheckedOutAt:    formatTimestamp(rec.AutoCheckedOutAt),
		CreatedAt:           rec.CreatedAt.Format(timestampLayout),
		UpdatedAt:           rec.UpdatedAt.Format(timestampLayout),
	}
}

type AttendanceFilter struct {
	MemberID  *string `json:"member_id,omitempty"`
	Search    *string `json:"search,omitempty"`     // member name or student id
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	// Status matches the derived status, not the stored snapshot.
	Status *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // date, member_name, check_in_time, check_out_time, created_at
	SortOrder string `json:"sort_order"` // asc, desc
}

var validSortFields = []string{"date", "member_name", "check_in_time", "check_out_time", "created_at"}

func statusNames() []string {
	out := make([]string, 0, len(AllStatuses()))
	for _, s := range AllStatuses() {
		out = append(out, string(s))
	}
	return out
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && *f.Status != "" {
		if !Status(*f.Status).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(statusNames(), ", "),
			})
		}
	}

	for field, v := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if v != nil && *v != "" {
			if _, valid := validator.IsValidDate(*v); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.StartDate != nil && f.EndDate != nil && *f.StartDate != "" && *f.EndDate != "" && *f.EndDate < *f.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// CreateAttendanceRequest is an admin entry for a member who could not scan.
type CreateAttendanceRequest struct {
	MemberID     string  `json:"member_id" validate:"required"`
	Date         string  `json:"date" validate:"required,date"`
	CheckInTime  *string `json:"check_in_time" validate:"omitempty,tod"`
	CheckOutTime *string `json:"check_out_time" validate:"omitempty,tod"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

func (r *CreateAttendanceRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if present(r.CheckOutTime) && !present(r.CheckInTime) {
		return validator.ValidationErrors{{
			Field:   "check_in_time",
			Message: "check_in_time is required when check_out_time is set",
		}}
	}
	return nil
}

// UpdateAttendanceRequest lets an admin fix times or notes. Duration and the
// status snapshot are recomputed from the result.
type UpdateAttendanceRequest struct {
	ID            string  `json:"-"`
	CheckInTime   *string `json:"check_in_time" validate:"omitempty,tod"`
	CheckOutTime  *string `json:"check_out_time" validate:"omitempty,tod"`
	Notes         *string `json:"notes" validate:"omitempty,max=500"`
	ClearCheckIn  bool    `json:"clear_check_in"`
	ClearCheckOut bool    `json:"clear_check_out"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	if r.ClearCheckIn && r.CheckInTime != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "clear_check_in",
			Message: "cannot set and clear check_in_time at once",
		})
	}
	if r.ClearCheckOut && r.CheckOutTime != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "clear_check_out",
			Message: "cannot set and clear check_out_time at once",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExportRequest selects the date range of an xlsx report.
type ExportRequest struct {
	StartDate string  `json:"start_date" validate:"required,date"`
	EndDate   string  `json:"end_date" validate:"required,date"`
	MemberID  *string `json:"member_id"`
}

func (r *ExportRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.EndDate < r.StartDate {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		}}
	}
	return nil
}

package member

import (
	"strings"

	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

type MemberResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	StudentID string   `json:"student_id"`
	RFIDID    string   `json:"rfid_id"`
	DutyDays  []string `json:"duty_days"`
	Status    Status   `json:"status"`
	Email     *string  `json:"email,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type CreateMemberRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	StudentID string   `json:"student_id" validate:"required,max=30"`
	RFIDID    string   `json:"rfid_id" validate:"required,rfid"`
	DutyDays  []string `json:"duty_days"`
	Email     *string  `json:"email"`
	Phone     *string  `json:"phone"`
}

func (r *CreateMemberRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.RFIDID = strings.ToUpper(strings.TrimSpace(r.RFIDID))

	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, ve...)
	}

	days, dayErrs := normalizeDutyDays(r.DutyDays)
	r.DutyDays = days
	errs = append(errs, dayErrs...)

	errs = append(errs, validateEmail(r.Email)...)

	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone number must be 10-13 digits starting with 08, 62 or +62",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateMemberRequest is a partial update; nil fields are left unchanged.
type UpdateMemberRequest struct {
	ID        string    `json:"-"`
	Name      *string   `json:"name" validate:"omitempty,max=100"`
	StudentID *string   `json:"student_id" validate:"omitempty,max=30"`
	RFIDID    *string   `json:"rfid_id" validate:"omitempty,rfid"`
	DutyDays  *[]string `json:"duty_days"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
}

func (r *UpdateMemberRequest) Validate() error {
	if r.RFIDID != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.RFIDID))
		r.RFIDID = &v
	}

	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, ve...)
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if r.StudentID != nil && validator.IsEmpty(*r.StudentID) {
		errs = append(errs, validator.ValidationError{Field: "student_id", Message: "student_id must not be empty"})
	}

	if r.DutyDays != nil {
		days, dayErrs := normalizeDutyDays(*r.DutyDays)
		r.DutyDays = &days
		errs = append(errs, dayErrs...)
	}

	errs = append(errs, validateEmail(r.Email)...)

	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone number must be 10-13 digits starting with 08, 62 or +62",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateEmail trims the address in place; an empty string clears it.
func validateEmail(email *string) validator.ValidationErrors {
	if email == nil {
		return nil
	}
	*email = strings.TrimSpace(*email)
	if *email != "" && !validator.IsValidEmail(*email) {
		return validator.ValidationErrors{{Field: "email", Message: "email must be a valid email address"}}
	}
	return nil
}

// normalizeDutyDays canonicalizes spelling and drops repeats.
func normalizeDutyDays(days []string) ([]string, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	out := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		name, ok := clock.NormalizeWeekday(d)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "duty_days",
				Message: ErrInvalidDutyDay.Error() + ": " + d,
			})
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, errs
}

type MemberFilter struct {
	Search  *string `json:"search,omitempty"` // name, student id or RFID
	Status  *string `json:"status,omitempty"`
	DutyDay *string `json:"duty_day,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MemberFilter) Validate() error {
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
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, []string{string(StatusActive), string(StatusInactive)}) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: active, inactive"})
		}
	}

	if f.DutyDay != nil && *f.DutyDay != "" {
		name, ok := clock.NormalizeWeekday(*f.DutyDay)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "duty_day", Message: ErrInvalidDutyDay.Error()})
		} else {
			f.DutyDay = &name
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListMemberResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Members    []MemberResponse `json:"members"`
}

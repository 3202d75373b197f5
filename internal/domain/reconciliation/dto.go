package reconciliation

import (
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

// RunRequest selects the target date; empty means today.
type RunRequest struct {
	Date string `json:"date"`
}

func (r *RunRequest) Validate() error {
	if r.Date == "" {
		return nil
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		return validator.ValidationErrors{{Field: "date", Message: ErrInvalidDate.Error()}}
	}
	return nil
}

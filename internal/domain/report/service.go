package report

import (
	"context"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// ExportAttendance renders the range as an xlsx workbook.
	ExportAttendance(ctx context.Context, req attendance.ExportRequest) (File, error)
}

package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/report"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
)

func str(s string) *string { return &s }

func newService() report.ReportService {
	loc := clock.MustLoadLocation(clock.DefaultTimezone)
	records := memory.NewAttendanceRepository(
		attendance.Attendance{ID: "a1", MemberID: "m1", MemberName: "Budi", StudentID: "2110001", Date: "2024-03-04", CheckInTime: str("08:00:00"), CheckOutTime: str("09:15:00"), Duration: str("01:15:00"), Source: attendance.SourceRFID},
		attendance.Attendance{ID: "a2", MemberID: "m1", MemberName: "Budi", StudentID: "2110001", Date: "2024-03-05", CheckInTime: str("08:00:00"), Source: attendance.SourceRFID},
		attendance.Attendance{ID: "a3", MemberID: "m2", MemberName: "Sari", StudentID: "2110002", Date: "2024-03-04", Status: attendance.StatusTidakHadir, Source: attendance.SourceSystem, AutoGenerated: true},
		attendance.Attendance{ID: "a4", MemberID: "m2", MemberName: "Sari", Date: "2024-04-01", Status: attendance.StatusTidakHadir},
	)
	return NewReportService(records, attendance.DefaultPolicy(), clock.Fixed{T: time.Date(2024, 3, 10, 9, 0, 0, 0, loc)})
}

func TestExportAttendance(t *testing.T) {
	svc := newService()

	file, err := svc.ExportAttendance(context.Background(), attendance.ExportRequest{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, "piket_2024-03-01_2024-03-31.xlsx", file.Name)
	assert.Equal(t, report.ContentTypeXLSX, file.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(detailSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, detailHeaders, rows[0])
	assert.Equal(t, "Hadir", rows[1][9])
	assert.Equal(t, "01:15:00", rows[1][8])
	assert.Equal(t, "Tidak Hadir", rows[2][9])
	assert.Equal(t, "Tidak Piket", rows[3][9])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Budi", "2110001", "1", "1", "0", "0", "0", "2"}, summary[1])
	assert.Equal(t, []string{"Sari", "2110002", "0", "0", "1", "0", "0", "1"}, summary[2])
}

func TestExportAttendance_MemberFilter(t *testing.T) {
	svc := newService()
	file, err := svc.ExportAttendance(context.Background(), attendance.ExportRequest{StartDate: "2024-03-01", EndDate: "2024-03-31", MemberID: str("m2")})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(detailSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExportAttendance_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.ExportAttendance(ctx, attendance.ExportRequest{StartDate: "2024-01-01", EndDate: "2024-06-01"})
	assert.ErrorIs(t, err, report.ErrRangeTooLarge)

	_, err = svc.ExportAttendance(ctx, attendance.ExportRequest{StartDate: "2024-03-10", EndDate: "2024-03-01"})
	var ve validator.ValidationErrors
	assert.ErrorAs(t, err, &ve)

	_, err = svc.ExportAttendance(ctx, attendance.ExportRequest{StartDate: "March", EndDate: "2024-03-01"})
	assert.ErrorAs(t, err, &ve)
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
)

var jakarta = clock.MustLoadLocation(clock.DefaultTimezone)

func str(s string) *string { return &s }

func fixture(now time.Time) (*DashboardServiceImpl, *memory.CounterRepository) {
	seen := now.Add(-30 * time.Second)
	stale := now.Add(-time.Hour)

	members := memory.NewMemberRepository(
		member.Member{ID: "m1", Name: "Budi", StudentID: "2110001", RFIDID: "A1", DutyDays: []string{"Senin"}, Status: member.StatusActive},
		member.Member{ID: "m2", Name: "Sari", StudentID: "2110002", RFIDID: "B2", DutyDays: []string{"Senin"}, Status: member.StatusActive},
		member.Member{ID: "m3", Name: "Tono", StudentID: "2110003", RFIDID: "C3", DutyDays: []string{"Senin"}, Status: member.StatusInactive},
	)
	records := memory.NewAttendanceRepository(
		attendance.Attendance{ID: "a1", MemberID: "m1", Date: "2024-03-04", CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket, UpdatedAt: now.Add(-2 * time.Hour)},
		attendance.Attendance{ID: "a2", MemberID: "m9", Date: "2024-03-04", CheckInTime: str("07:00:00"), CheckOutTime: str("09:00:00"), Status: attendance.StatusHadir, UpdatedAt: now.Add(-time.Hour)},
		attendance.Attendance{ID: "a3", MemberID: "m1", Date: "2024-03-01", CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket},
		attendance.Attendance{ID: "a4", MemberID: "m2", Date: "2024-02-26", Status: attendance.StatusTidakHadir, AutoGenerated: true},
	)
	devices := memory.NewDeviceRepository(
		device.Device{ID: "esp-1", Name: "Door", LastSeenAt: &seen},
		device.Device{ID: "esp-2", Name: "Desk", LastSeenAt: &stale},
	)
	counters := memory.NewCounterRepository()
	svc := NewDashboardService(records, members, devices, memory.NewScanLogRepository(), counters, Config{
		Policy: attendance.DefaultPolicy(),
		Clock:  clock.Fixed{T: now},
	}).(*DashboardServiceImpl)
	return svc, counters
}

func TestGetSummary(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, jakarta)
	svc, counters := fixture(now)
	ctx := context.Background()
	require.NoError(t, counters.Increment(ctx, "2024-03-04", scan.ClassCheckIn))

	got, err := svc.GetSummary(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", got.Date)
	assert.Equal(t, "Senin", got.Weekday)
	assert.EqualValues(t, 2, got.ActiveMembers)
	assert.Equal(t, 2, got.ScheduledToday)
	assert.Equal(t, 1, got.NotYetReported)
	assert.Equal(t, 1, got.Statuses.SedangPiket)
	assert.Equal(t, 1, got.Statuses.Hadir)
	assert.Equal(t, 2, got.Statuses.Total)
	assert.EqualValues(t, 1, got.Live.CheckIn)
	assert.Equal(t, 2, got.DevicesTotal)
	assert.Equal(t, 1, got.DevicesOnline)
	require.Len(t, got.LatestAttendance, 2)
	assert.Equal(t, "a2", got.LatestAttendance[0].ID)
}

func TestGetSummary_InvalidDate(t *testing.T) {
	svc, _ := fixture(time.Date(2024, 3, 4, 10, 0, 0, 0, jakarta))
	_, err := svc.GetSummary(context.Background(), "04/03/2024")
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.ToMap(), "date")

	_, err = svc.GetWeekly(context.Background(), "bad")
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.ToMap(), "date")
}

func TestGetWeekly(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, jakarta)
	svc, _ := fixture(now)

	got, err := svc.GetWeekly(context.Background(), "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-27", got.StartDate)
	assert.Equal(t, "2024-03-04", got.EndDate)
	require.Len(t, got.Days, 7)

	// 2024-03-01 was left open past its cutoff.
	assert.Equal(t, "2024-03-01", got.Days[3].Date)
	assert.Equal(t, "Jumat", got.Days[3].Weekday)
	assert.Equal(t, 1, got.Days[3].Statuses.TidakPiket)

	last := got.Days[6]
	assert.Equal(t, 1, last.Statuses.SedangPiket)
	assert.Equal(t, 1, last.Statuses.Hadir)

	// 2024-02-26 is outside the window.
	for _, d := range got.Days {
		assert.Zero(t, d.Statuses.TidakHadir, d.Date)
	}
}

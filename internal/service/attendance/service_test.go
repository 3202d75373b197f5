package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
)

var jakarta = clock.MustLoadLocation(clock.DefaultTimezone)

func str(s string) *string { return &s }

type fixture struct {
	svc         attendance.AttendanceService
	attendances *memory.AttendanceRepository
	members     *memory.MemberRepository
}

func newFixture(now time.Time, records ...attendance.Attendance) fixture {
	members := memory.NewMemberRepository(member.Member{
		ID: "m1", Name: "Budi Santoso", StudentID: "2110001", RFIDID: "A1B2C3",
		DutyDays: []string{"Senin"}, Status: member.StatusActive,
	})
	attendances := memory.NewAttendanceRepository(records...)
	svc := NewAttendanceService(attendances, members, attendance.DefaultPolicy(), clock.Fixed{T: now}, sse.NewHub())
	return fixture{svc: svc, attendances: attendances, members: members}
}

func TestGetAttendance_DerivesStatusOnRead(t *testing.T) {
	now := time.Date(2024, 3, 4, 19, 0, 0, 0, jakarta)
	f := newFixture(now, attendance.Attendance{
		ID: "a1", MemberID: "m1", Date: "2024-03-04",
		CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket,
	})

	got, err := f.svc.GetAttendance(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusTidakPiket, got.Status)

	_, err = f.svc.GetAttendance(context.Background(), "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestListAttendance_StatusFilterUsesDerivedStatus(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, jakarta)
	f := newFixture(now,
		// Stored as in progress yesterday; derived as missed today.
		attendance.Attendance{ID: "a1", MemberID: "m1", Date: "2024-03-04", CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket},
		attendance.Attendance{ID: "a2", MemberID: "m1", Date: "2024-03-05", CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket},
		attendance.Attendance{ID: "a3", MemberID: "m1", Date: "2024-03-03", CheckInTime: str("08:00:00"), CheckOutTime: str("10:00:00"), Status: attendance.StatusHadir},
	)

	status := string(attendance.StatusSedangPiket)
	got, err := f.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got.Attendances, 1)
	assert.Equal(t, "a2", got.Attendances[0].ID)
	assert.EqualValues(t, 1, got.TotalCount)

	status = string(attendance.StatusTidakPiket)
	got, err = f.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got.Attendances, 1)
	assert.Equal(t, "a1", got.Attendances[0].ID)
}

func TestListAttendance_Pagination(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, jakarta)
	var records []attendance.Attendance
	for i, d := range []string{"2024-03-04", "2024-03-05", "2024-03-06"} {
		records = append(records, attendance.Attendance{ID: string(rune('a' + i)), MemberID: "m1", Date: d})
	}
	f := newFixture(now, records...)

	got, err := f.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.TotalCount)
	assert.Equal(t, 2, got.TotalPages)
	assert.Equal(t, "1-2 of 3", got.Showing)
	require.Len(t, got.Attendances, 2)
	assert.Equal(t, "2024-03-06", got.Attendances[0].Date)
}

func TestListAttendance_InvalidFilter(t *testing.T) {
	f := newFixture(time.Now())
	bad := "Terlambat"
	_, err := f.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{Status: &bad})
	var ve validator.ValidationErrors
	assert.ErrorAs(t, err, &ve)
}

func TestCreateAttendance(t *testing.T) {
	now := time.Date(2024, 3, 4, 20, 0, 0, 0, jakarta)
	f := newFixture(now)

	got, err := f.svc.CreateAttendance(context.Background(), attendance.CreateAttendanceRequest{
		MemberID: "m1", Date: "2024-03-04", CheckInTime: str("08:00"), CheckOutTime: str("10:30:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.MemberName)
	assert.Equal(t, "08:00:00", *got.CheckInTime)
	assert.Equal(t, "02:30:00", *got.Duration)
	assert.Equal(t, attendance.StatusHadir, got.Status)
	assert.Equal(t, attendance.SourceManual, got.Source)

	_, err = f.svc.CreateAttendance(context.Background(), attendance.CreateAttendanceRequest{MemberID: "m1", Date: "2024-03-04"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	_, err = f.svc.CreateAttendance(context.Background(), attendance.CreateAttendanceRequest{MemberID: "nobody", Date: "2024-03-04"})
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestUpdateAttendance_RecomputesDurationAndSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, jakarta)
	f := newFixture(now, attendance.Attendance{
		ID: "a1", MemberID: "m1", Date: "2024-03-04",
		CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket,
	})

	got, err := f.svc.UpdateAttendance(context.Background(), attendance.UpdateAttendanceRequest{
		ID: "a1", CheckOutTime: str("11:15:00"), Notes: str(" forgot to scan "),
	})
	require.NoError(t, err)
	assert.Equal(t, "03:15:00", *got.Duration)
	assert.Equal(t, attendance.StatusHadir, got.Status)
	assert.Equal(t, "forgot to scan", *got.Notes)

	stored, err := f.attendances.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHadir, stored.Status)

	got, err = f.svc.UpdateAttendance(context.Background(), attendance.UpdateAttendanceRequest{ID: "a1", ClearCheckOut: true})
	require.NoError(t, err)
	assert.Nil(t, got.Duration)
	assert.Equal(t, attendance.StatusSedangPiket, got.Status)
}

func TestUpdateAttendance_CheckOutNeedsCheckIn(t *testing.T) {
	f := newFixture(time.Now(), attendance.Attendance{ID: "a1", MemberID: "m1", Date: "2024-03-04"})
	_, err := f.svc.UpdateAttendance(context.Background(), attendance.UpdateAttendanceRequest{ID: "a1", CheckOutTime: str("10:00:00")})
	var ve validator.ValidationErrors
	assert.ErrorAs(t, err, &ve)
}

func TestDeleteAttendance(t *testing.T) {
	f := newFixture(time.Now(), attendance.Attendance{ID: "a1", MemberID: "m1", Date: "2024-03-04"})
	require.NoError(t, f.svc.DeleteAttendance(context.Background(), "a1"))
	assert.ErrorIs(t, f.svc.DeleteAttendance(context.Background(), "a1"), attendance.ErrAttendanceNotFound)
}

func TestListToday_OrdersByCheckIn(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, jakarta)
	f := newFixture(now,
		attendance.Attendance{ID: "late", MemberID: "m2", Date: "2024-03-04", CheckInTime: str("10:00:00")},
		attendance.Attendance{ID: "none", MemberID: "m3", Date: "2024-03-04"},
		attendance.Attendance{ID: "early", MemberID: "m1", Date: "2024-03-04", CheckInTime: str("07:30:00")},
		attendance.Attendance{ID: "other-day", MemberID: "m1", Date: "2024-03-03"},
	)

	got, err := f.svc.ListToday(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"early", "late", "none"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, attendance.StatusBelumPiket, got[2].Status)
}

func TestListMemberAttendance_UnknownMember(t *testing.T) {
	f := newFixture(time.Now())
	_, err := f.svc.ListMemberAttendance(context.Background(), "ghost", attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

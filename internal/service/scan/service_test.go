package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/sse"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
	notifsvc "github.com/reslab/attendance-backend-go/internal/service/notification"
)

var jakarta = clock.MustLoadLocation(clock.DefaultTimezone)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(s string) *string { return &s }

type fixture struct {
	attendances *memory.AttendanceRepository
	members     *memory.MemberRepository
	logs        *memory.ScanLogRepository
	counters    *memory.CounterRepository
	devices     *memory.DeviceRepository
	hub         *sse.Hub
}

func newFixture(records ...attendance.Attendance) *fixture {
	return &fixture{
		attendances: memory.NewAttendanceRepository(records...),
		members: memory.NewMemberRepository(
			member.Member{ID: "m1", Name: "Budi Santoso", StudentID: "2110001", RFIDID: "A1B2C3", DutyDays: []string{"Senin"}, Status: member.StatusActive},
			member.Member{ID: "m2", Name: "Sari Dewi", StudentID: "2110002", RFIDID: "D4E5F6", Status: member.StatusInactive},
		),
		logs:     memory.NewScanLogRepository(),
		counters: memory.NewCounterRepository(),
		devices:  memory.NewDeviceRepository(),
		hub:      sse.NewHub(),
	}
}

func (f *fixture) service(now time.Time) scan.ScanService {
	return NewScanService(f.members, f.attendances, f.logs, f.counters, f.devices,
		notifsvc.Inline{Logger: quietLogger()}, f.hub,
		Config{Policy: attendance.DefaultPolicy(), Clock: clock.Fixed{T: now}, Logger: quietLogger()})
}

func at(hhmmss string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04:05", "2024-03-04 "+hhmmss, jakarta)
	return t
}

func TestIngest_UnknownCard(t *testing.T) {
	f := newFixture()
	_, err := f.service(at("08:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "ZZ999", DeviceID: "esp32-lab"})

	assert.ErrorIs(t, err, scan.ErrUnknownCard)
	assert.Empty(t, f.attendances.All())

	logs := f.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, scan.ClassUnknown, logs[0].Classification)
	assert.Equal(t, "ZZ999", logs[0].RFIDID)
	assert.Nil(t, logs[0].MemberID)
}

func TestIngest_CheckInCreatesRecord(t *testing.T) {
	f := newFixture()
	events, cancel := f.hub.Subscribe(sse.EventScan)
	defer cancel()

	resp, err := f.service(at("08:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "a1b2c3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckIn, resp.Action)
	require.NotNil(t, resp.Attendance)
	assert.Equal(t, attendance.StatusSedangPiket, resp.Attendance.Status)

	records := f.attendances.All()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "2024-03-04", rec.Date)
	assert.Equal(t, "08:00:00", *rec.CheckInTime)
	assert.Nil(t, rec.CheckOutTime)
	assert.Equal(t, "Budi Santoso", rec.MemberName)
	assert.Equal(t, "2110001", rec.StudentID)
	assert.Equal(t, attendance.SourceRFID, rec.Source)

	logs := f.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, scan.ClassCheckIn, logs[0].Classification)
	assert.Equal(t, rec.ID, *logs[0].AttendanceID)

	live, _ := f.counters.Get(context.Background(), "2024-03-04")
	assert.EqualValues(t, 1, live.CheckIn)

	dev, err := f.devices.GetByID(context.Background(), "esp32-lab")
	require.NoError(t, err)
	require.NotNil(t, dev.LastScanAt)

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventScan, ev.Type)
	default:
		t.Fatal("expected a scan event")
	}
}

func TestIngest_LateCheckInIsRecordedAsMissed(t *testing.T) {
	f := newFixture()
	resp, err := f.service(at("18:30:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckIn, resp.Action)
	assert.Equal(t, attendance.StatusTidakPiket, resp.Attendance.Status)
}

func TestIngest_CheckOutBeforeMinimumDuration(t *testing.T) {
	f := newFixture(attendance.Attendance{
		ID: "a1", MemberID: "m1", MemberName: "Budi Santoso", Date: "2024-03-04",
		CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket,
	})

	_, err := f.service(at("08:30:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrMinimumDuration)

	var minErr *attendance.MinimumDurationError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 30, minErr.Remaining)
	assert.Contains(t, err.Error(), "30 minutes remaining")

	rec, _ := f.attendances.GetByID(context.Background(), "a1")
	assert.Nil(t, rec.CheckOutTime)

	logs := f.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, scan.ClassRejected, logs[0].Classification)
}

func TestIngest_CheckOut(t *testing.T) {
	f := newFixture(attendance.Attendance{
		ID: "a1", MemberID: "m1", MemberName: "Budi Santoso", Date: "2024-03-04",
		CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket,
	})

	resp, err := f.service(at("09:15:42")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckOut, resp.Action)

	rec, _ := f.attendances.GetByID(context.Background(), "a1")
	assert.Equal(t, "09:15:42", *rec.CheckOutTime)
	assert.Equal(t, "01:15:00", *rec.Duration)
	assert.Equal(t, attendance.StatusHadir, rec.Status)

	live, _ := f.counters.Get(context.Background(), "2024-03-04")
	assert.EqualValues(t, 1, live.CheckOut)
}

func TestIngest_CheckOutPastCutoff(t *testing.T) {
	f := newFixture(attendance.Attendance{
		ID: "a1", MemberID: "m1", Date: "2024-03-04", CheckInTime: str("08:00:00"),
	})

	_, err := f.service(at("18:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	assert.ErrorIs(t, err, attendance.ErrCheckoutPastCutoff)

	rec, _ := f.attendances.GetByID(context.Background(), "a1")
	assert.Nil(t, rec.CheckOutTime)
}

func TestIngest_AlreadyCheckedOut(t *testing.T) {
	f := newFixture(attendance.Attendance{
		ID: "a1", MemberID: "m1", Date: "2024-03-04",
		CheckInTime: str("08:00:00"), CheckOutTime: str("10:00:00"), Status: attendance.StatusHadir,
	})

	_, err := f.service(at("11:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
	assert.Len(t, f.attendances.All(), 1)
	assert.Len(t, f.logs.All(), 1)
}

func TestIngest_FillsPlaceholderCheckIn(t *testing.T) {
	f := newFixture(attendance.Attendance{
		ID: "a1", MemberID: "m1", Date: "2024-03-04", Source: attendance.SourceManual,
	})

	resp, err := f.service(at("09:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckIn, resp.Action)

	rec, _ := f.attendances.GetByID(context.Background(), "a1")
	assert.Equal(t, "09:00:00", *rec.CheckInTime)
	assert.Len(t, f.attendances.All(), 1)
}

func TestIngest_UsesAuthoritativeDuplicate(t *testing.T) {
	f := newFixture(
		attendance.Attendance{ID: "absence", MemberID: "m1", Date: "2024-03-04", Status: attendance.StatusTidakHadir, AutoGenerated: true},
		attendance.Attendance{ID: "scan", MemberID: "m1", Date: "2024-03-04", CheckInTime: str("08:00:00"), Status: attendance.StatusSedangPiket},
	)

	resp, err := f.service(at("10:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckOut, resp.Action)
	assert.Equal(t, "scan", resp.Attendance.ID)
}

func TestIngest_InactiveMember(t *testing.T) {
	f := newFixture()
	_, err := f.service(at("08:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "D4E5F6", DeviceID: "esp32-lab"})
	assert.ErrorIs(t, err, member.ErrMemberInactive)
	assert.Empty(t, f.attendances.All())

	logs := f.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, scan.ClassRejected, logs[0].Classification)
	assert.Equal(t, "m2", *logs[0].MemberID)
}

func TestIngest_ExplicitTimestamp(t *testing.T) {
	f := newFixture()
	// 01:30 UTC is 08:30 in Jakarta.
	_, err := f.service(at("12:00:00")).Ingest(context.Background(), scan.ScanRequest{
		RFIDID: "A1B2C3", DeviceID: "esp32-lab", Timestamp: "2024-03-04T01:30:00Z",
	})
	require.NoError(t, err)
	rec := f.attendances.All()[0]
	assert.Equal(t, "08:30:00", *rec.CheckInTime)
}

func TestIngest_InvalidPayload(t *testing.T) {
	f := newFixture()
	_, err := f.service(at("08:00:00")).Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3"})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, f.logs.All(), 1)

	_, err = f.service(at("08:00:00")).Ingest(context.Background(), scan.ScanRequest{DeviceID: "esp32-lab"})
	require.ErrorAs(t, err, &ve)

	logs := f.logs.All()
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, scan.ClassRejected, l.Classification)
	}
	assert.Empty(t, logs[1].RFIDID)
	assert.Equal(t, "esp32-lab", logs[1].DeviceID)
	assert.Empty(t, f.attendances.All())
}

func TestReject_WritesRejectedLog(t *testing.T) {
	f := newFixture()
	f.service(at("08:00:00")).Reject(context.Background(), "", "invalid request body: unexpected EOF")

	logs := f.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, scan.ClassRejected, logs[0].Classification)
	assert.Empty(t, logs[0].RFIDID)
	assert.Equal(t, "invalid request body: unexpected EOF", logs[0].Message)
	assert.True(t, at("08:00:00").Equal(logs[0].ScannedAt))
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string, scan.Classification) error {
	return errors.New("redis unavailable")
}

func (failingCounter) Get(context.Context, string) (scan.LiveCounts, error) {
	return scan.LiveCounts{}, errors.New("redis unavailable")
}

func TestIngest_SideEffectFailureDoesNotFailScan(t *testing.T) {
	f := newFixture()
	dispatcher := notifsvc.NewDispatcher(notifsvc.Config{WorkerCount: 1}, quietLogger())
	defer dispatcher.Stop()

	svc := NewScanService(f.members, f.attendances, f.logs, failingCounter{}, f.devices, dispatcher, f.hub,
		Config{Policy: attendance.DefaultPolicy(), Clock: clock.Fixed{T: at("08:00:00")}, Logger: quietLogger()})

	resp, err := svc.Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})
	require.NoError(t, err)
	assert.Equal(t, scan.ClassCheckIn, resp.Action)

	dispatcher.Wait()
	dev, err := f.devices.GetByID(context.Background(), "esp32-lab")
	require.NoError(t, err)
	assert.NotNil(t, dev.LastSeenAt)
}

func TestListLogs(t *testing.T) {
	f := newFixture()
	svc := f.service(at("08:00:00"))
	_, _ = svc.Ingest(context.Background(), scan.ScanRequest{RFIDID: "ZZ999", DeviceID: "esp32-lab"})
	_, _ = svc.Ingest(context.Background(), scan.ScanRequest{RFIDID: "A1B2C3", DeviceID: "esp32-lab"})

	unknown := string(scan.ClassUnknown)
	got, err := svc.ListLogs(context.Background(), scan.ScanLogFilter{Classification: &unknown})
	require.NoError(t, err)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, "ZZ999", got.Logs[0].RFIDID)
	assert.EqualValues(t, 1, got.TotalCount)
}

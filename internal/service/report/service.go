package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/report"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

// MaxRangeDays bounds a single export.
const MaxRangeDays = 93

const (
	detailSheet  = "Piket"
	summarySheet = "Rekap"
)

var detailHeaders = []string{"No", "Tanggal", "Hari", "Nama", "NIM", "RFID", "Check-in", "Check-out", "Durasi", "Status", "Sumber", "Catatan"}

var summaryHeaders = []string{"Nama", "NIM", "Hadir", "Tidak Piket", "Tidak Hadir", "Sedang Piket", "Belum Piket", "Total"}

type ReportServiceImpl struct {
	attendance.AttendanceRepository
	policy attendance.Policy
	clock  clock.Clock
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, policy attendance.Policy, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{
		AttendanceRepository: attendanceRepo,
		policy:               policy,
		clock:                clk,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req attendance.ExportRequest) (report.File, error) {
	if err := req.Validate(); err != nil {
		return report.File{}, err
	}

	start, _ := time.Parse(clock.DateLayout, req.StartDate)
	end, _ := time.Parse(clock.DateLayout, req.EndDate)
	if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
		return report.File{}, report.ErrRangeTooLarge
	}

	records, err := s.AttendanceRepository.ListRange(ctx, req.StartDate, req.EndDate, req.MemberID)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to get attendance data: %w", err)
	}
	views := s.policy.DeriveAll(records, s.clock.Now())

	content, err := buildWorkbook(views)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to build workbook: %w", err)
	}

	return report.File{
		Name:        fmt.Sprintf("piket_%s_%s.xlsx", req.StartDate, req.EndDate),
		ContentType: report.ContentTypeXLSX,
		Content:     content,
	}, nil
}

type memberTotals struct {
	name      string
	studentID string
	counts    map[attendance.Status]int
	total     int
}

func buildWorkbook(views []attendance.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(detailSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeRow(f, detailSheet, 1, detailHeaders)
	lastCol, _ := excelize.ColumnNumberToName(len(detailHeaders))
	f.SetCellStyle(detailSheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(detailSheet, "A", "A", 6)
	f.SetColWidth(detailSheet, "B", "C", 12)
	f.SetColWidth(detailSheet, "D", "D", 28)
	f.SetColWidth(detailSheet, "E", "K", 14)
	f.SetColWidth(detailSheet, "L", "L", 36)

	totals := make(map[string]*memberTotals)
	var order []string

	for i, v := range views {
		rec := v.Record
		weekday, _ := clock.WeekdayOf(rec.Date)
		writeRow(f, detailSheet, i+2, []any{
			i + 1,
			rec.Date,
			weekday,
			rec.MemberName,
			rec.StudentID,
			rec.RFIDID,
			deref(rec.CheckInTime),
			deref(rec.CheckOutTime),
			deref(rec.Duration),
			string(v.Status),
			string(rec.Source),
			deref(rec.Notes),
		})

		key := rec.MemberID
		if key == "" {
			key = attendance.NormalizeName(rec.MemberName)
		}
		t, ok := totals[key]
		if !ok {
			t = &memberTotals{name: rec.MemberName, studentID: rec.StudentID, counts: make(map[attendance.Status]int)}
			totals[key] = t
			order = append(order, key)
		}
		t.counts[v.Status]++
		t.total++
	}

	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]].name < totals[order[j]].name })

	writeRow(f, summarySheet, 1, summaryHeaders)
	lastCol, _ = excelize.ColumnNumberToName(len(summaryHeaders))
	f.SetCellStyle(summarySheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "H", 14)

	for i, key := range order {
		t := totals[key]
		writeRow(f, summarySheet, i+2, []any{
			t.name,
			t.studentID,
			t.counts[attendance.StatusHadir],
			t.counts[attendance.StatusTidakPiket],
			t.counts[attendance.StatusTidakHadir],
			t.counts[attendance.StatusSedangPiket],
			t.counts[attendance.StatusBelumPiket],
			t.total,
		})
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

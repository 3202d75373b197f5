package dashboard

import (
	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
)

// StatusCounts holds derived status totals for one date.
type StatusCounts struct {
	BelumPiket  int `json:"belum_piket"`
	SedangPiket int `json:"sedang_piket"`
	Hadir       int `json:"hadir"`
	TidakPiket  int `json:"tidak_piket"`
	TidakHadir  int `json:"tidak_hadir"`
	Total       int `json:"total"`
}

// Add counts one record with status s.
func (c *StatusCounts) Add(s attendance.Status) {
	switch s {
	case attendance.StatusBelumPiket:
		c.BelumPiket++
	case attendance.StatusSedangPiket:
		c.SedangPiket++
	case attendance.StatusHadir:
		c.Hadir++
	case attendance.StatusTidakPiket:
		c.TidakPiket++
	case attendance.StatusTidakHadir:
		c.TidakHadir++
	}
	c.Total++
}

type SummaryResponse struct {
	Date             string                          `json:"date"`
	Weekday          string                          `json:"weekday"`
	ActiveMembers    int64                           `json:"active_members"`
	ScheduledToday   int                             `json:"scheduled_members"`
	NotYetReported   int                             `json:"scheduled_not_reported"`
	Statuses         StatusCounts                    `json:"statuses"`
	Live             scan.LiveCounts                 `json:"live"`
	DevicesOnline    int                             `json:"devices_online"`
	DevicesTotal     int                             `json:"devices_total"`
	Devices          []device.DeviceResponse         `json:"devices"`
	RecentScans      []scan.ScanLogResponse          `json:"recent_scans"`
	LatestAttendance []attendance.AttendanceResponse `json:"latest_attendance"`
}

type DailyCount struct {
	Date     string       `json:"date"`
	Weekday  string       `json:"weekday"`
	Statuses StatusCounts `json:"statuses"`
}

type WeeklyResponse struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Days      []DailyCount `json:"days"`
}

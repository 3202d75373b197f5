package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/domain/dashboard"
	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	deviceService "github.com/reslab/attendance-backend-go/internal/service/device"
	scanService "github.com/reslab/attendance-backend-go/internal/service/scan"
)

const (
	recentScanLimit       = 10
	latestAttendanceLimit = 10
	weeklyDays            = 7
)

type Config struct {
	Policy       attendance.Policy
	Clock        clock.Clock
	OnlineWindow time.Duration
}

type DashboardServiceImpl struct {
	attendance.AttendanceRepository
	member.MemberRepository
	device.DeviceRepository
	logs     scan.LogRepository
	counters scan.CounterRepository
	cfg      Config
}

func NewDashboardService(
	attendanceRepo attendance.AttendanceRepository,
	memberRepo member.MemberRepository,
	deviceRepo device.DeviceRepository,
	logRepo scan.LogRepository,
	counterRepo scan.CounterRepository,
	cfg Config,
) dashboard.DashboardService {
	if cfg.OnlineWindow <= 0 {
		cfg.OnlineWindow = deviceService.DefaultOnlineWindow
	}
	return &DashboardServiceImpl{
		AttendanceRepository: attendanceRepo,
		MemberRepository:     memberRepo,
		DeviceRepository:     deviceRepo,
		logs:                 logRepo,
		counters:             counterRepo,
		cfg:                  cfg,
	}
}

// parseDate parses YYYY-MM-DD, defaulting to today
func (s *DashboardServiceImpl) parseDate(date string) (time.Time, error) {
	now := s.cfg.Clock.Now()
	if date == "" {
		return now, nil
	}
	parsed, err := time.ParseInLocation(clock.DateLayout, date, now.Location())
	if err != nil {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	return parsed, nil
}

// GetSummary returns combined dashboard data using parallel goroutines
func (s *DashboardServiceImpl) GetSummary(ctx context.Context, date string) (*dashboard.SummaryResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	dateStr := clock.DateString(day)
	weekday := clock.WeekdayName(day.Weekday())
	now := s.cfg.Clock.Now()

	var (
		activeMembers int64
		scheduled     []member.Member
		records       []attendance.Attendance
		live          scan.LiveCounts
		devices       []device.Device
		recent        []scan.Log
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Active member count
	g.Go(func() error {
		n, err := s.MemberRepository.CountActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		activeMembers = n
		return nil
	})

	// 2. Members on duty for the weekday
	g.Go(func() error {
		list, err := s.MemberRepository.ListActiveByDutyDay(gCtx, weekday)
		if err != nil {
			return fmt.Errorf("failed to list scheduled members: %w", err)
		}
		scheduled = list
		return nil
	})

	// 3. Attendance for the date
	g.Go(func() error {
		list, err := s.AttendanceRepository.ListByDate(gCtx, dateStr)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		records = list
		return nil
	})

	// 4. Live counters; the fast store is optional
	g.Go(func() error {
		counts, err := s.counters.Get(gCtx, dateStr)
		if err != nil {
			counts = scan.LiveCounts{Date: dateStr}
		}
		live = counts
		return nil
	})

	// 5. Devices
	g.Go(func() error {
		list, err := s.DeviceRepository.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list devices: %w", err)
		}
		devices = list
		return nil
	})

	// 6. Recent scans
	g.Go(func() error {
		list, err := s.logs.Recent(gCtx, recentScanLimit)
		if err != nil {
			return fmt.Errorf("failed to list recent scans: %w", err)
		}
		recent = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := s.cfg.Policy.DeriveAll(records, now)

	var counts dashboard.StatusCounts
	for _, v := range views {
		counts.Add(v.Status)
	}

	notReported := 0
	for _, m := range scheduled {
		reported := false
		for _, rec := range records {
			if rec.Identity().Matches(m.Identity()) {
				reported = true
				break
			}
		}
		if !reported {
			notReported++
		}
	}

	deviceResponses := make([]device.DeviceResponse, 0, len(devices))
	online := 0
	for _, d := range devices {
		resp := deviceService.ToResponse(d, now, s.cfg.OnlineWindow)
		if resp.Online {
			online++
		}
		deviceResponses = append(deviceResponses, resp)
	}

	recentResponses := make([]scan.ScanLogResponse, 0, len(recent))
	for _, l := range recent {
		recentResponses = append(recentResponses, scanService.ToLogResponse(l, now.Location()))
	}

	// Latest activity first.
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Record.UpdatedAt.After(views[j].Record.UpdatedAt)
	})
	latest := make([]attendance.AttendanceResponse, 0, latestAttendanceLimit)
	for i, v := range views {
		if i == latestAttendanceLimit {
			break
		}
		latest = append(latest, attendance.NewAttendanceResponse(v))
	}

	return &dashboard.SummaryResponse{
		Date:             dateStr,
		Weekday:          weekday,
		ActiveMembers:    activeMembers,
		ScheduledToday:   len(scheduled),
		NotYetReported:   notReported,
		Statuses:         counts,
		Live:             live,
		DevicesOnline:    online,
		DevicesTotal:     len(devices),
		Devices:          deviceResponses,
		RecentScans:      recentResponses,
		LatestAttendance: latest,
	}, nil
}

// GetWeekly returns derived status counts for the seven days ending at endDate
func (s *DashboardServiceImpl) GetWeekly(ctx context.Context, endDate string) (*dashboard.WeeklyResponse, error) {
	end, err := s.parseDate(endDate)
	if err != nil {
		return nil, err
	}
	start := end.AddDate(0, 0, -(weeklyDays - 1))
	startStr, endStr := clock.DateString(start), clock.DateString(end)

	records, err := s.AttendanceRepository.ListRange(ctx, startStr, endStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}

	now := s.cfg.Clock.Now()
	byDate := make(map[string]*dashboard.StatusCounts, weeklyDays)
	for _, v := range s.cfg.Policy.DeriveAll(records, now) {
		c, ok := byDate[v.Record.Date]
		if !ok {
			c = &dashboard.StatusCounts{}
			byDate[v.Record.Date] = c
		}
		c.Add(v.Status)
	}

	days := make([]dashboard.DailyCount, 0, weeklyDays)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		ds := clock.DateString(d)
		day := dashboard.DailyCount{Date: ds, Weekday: clock.WeekdayName(d.Weekday())}
		if c, ok := byDate[ds]; ok {
			day.Statuses = *c
		}
		days = append(days, day)
	}

	return &dashboard.WeeklyResponse{
		StartDate: startStr,
		EndDate:   endStr,
		Days:      days,
	}, nil
}

package dashboard

import "context"

// DashboardService aggregates read-only views for the lab dashboard.
type DashboardService interface {
	// GetSummary returns combined dashboard data for date using goroutines
	GetSummary(ctx context.Context, date string) (*SummaryResponse, error)

	// GetWeekly returns derived status counts for the seven days ending at date
	GetWeekly(ctx context.Context, endDate string) (*WeeklyResponse, error)
}

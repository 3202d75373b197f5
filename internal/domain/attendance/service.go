package attendance

import (
	"context"
)

// AttendanceService exposes attendance reads and admin edits. Every response
// carries the status derived at read time.
type AttendanceService interface {
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListToday returns today's records in check-in order.
	ListToday(ctx context.Context) ([]AttendanceResponse, error)

	ListMemberAttendance(ctx context.Context, memberID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)

	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	DeleteAttendance(ctx context.Context, id string) error
}

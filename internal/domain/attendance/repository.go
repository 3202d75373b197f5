package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
// There is no uniqueness on (member, date); callers that need one record use
// Authoritative on the result of ListByMemberAndDate.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// ListByDate returns every record stored for date.
	ListByDate(ctx context.Context, date string) ([]Attendance, error)

	ListByMemberAndDate(ctx context.Context, memberID string, date string) ([]Attendance, error)

	// ListOpenByDate returns records with a check-in and no check-out.
	ListOpenByDate(ctx context.Context, date string) ([]Attendance, error)

	// ExistsForIdentity reports whether any record on date matches one of the
	// identity fields. Used as the last check before inserting an absence.
	ExistsForIdentity(ctx context.Context, date string, id Identity) (bool, error)

	// List applies the SQL-side filters. The status filter is ignored here
	// because status is derived after reading.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListRange returns all records in [startDate, endDate], optionally for one member.
	ListRange(ctx context.Context, startDate, endDate string, memberID *string) ([]Attendance, error)

	Update(ctx context.Context, attendance Attendance) error

	Delete(ctx context.Context, id string) error
}

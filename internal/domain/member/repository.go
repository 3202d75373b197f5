package member

import "context"

type MemberRepository interface {
	Create(ctx context.Context, m Member) (Member, error)
	GetByID(ctx context.Context, id string) (Member, error)
	GetByRFID(ctx context.Context, rfidID string) (Member, error)
	GetByStudentID(ctx context.Context, studentID string) (Member, error)
	List(ctx context.Context, filter MemberFilter) ([]Member, int64, error)

	// ListActiveByDutyDay returns active members scheduled on weekday.
	ListActiveByDutyDay(ctx context.Context, weekday string) ([]Member, error)

	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, m Member) error
	SetStatus(ctx context.Context, id string, status Status) error
}

package member

import "context"

// MemberService defines admin operations on lab members. Deletion is soft:
// the member is marked inactive so attendance history keeps its reference.
type MemberService interface {
	CreateMember(ctx context.Context, req CreateMemberRequest) (MemberResponse, error)
	GetMember(ctx context.Context, id string) (MemberResponse, error)
	GetMemberByRFID(ctx context.Context, rfidID string) (MemberResponse, error)
	ListMembers(ctx context.Context, filter MemberFilter) (ListMemberResponse, error)
	UpdateMember(ctx context.Context, req UpdateMemberRequest) (MemberResponse, error)
	DeleteMember(ctx context.Context, id string) error
	ActivateMember(ctx context.Context, id string) (MemberResponse, error)
}

package member

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/member"
)

type MemberServiceImpl struct {
	member.MemberRepository
}

func NewMemberService(memberRepo member.MemberRepository) member.MemberService {
	return &MemberServiceImpl{MemberRepository: memberRepo}
}

func toResponse(m member.Member) member.MemberResponse {
	days := m.DutyDays
	if days == nil {
		days = []string{}
	}
	return member.MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		StudentID: m.StudentID,
		RFIDID:    m.RFIDID,
		DutyDays:  days,
		Status:    m.Status,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: m.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// checkUnique reports a conflict when rfid or student id belongs to a member
// other than selfID.
func (s *MemberServiceImpl) checkUnique(ctx context.Context, selfID, rfidID, studentID string) error {
	if existing, err := s.MemberRepository.GetByRFID(ctx, rfidID); err == nil {
		if existing.ID != selfID {
			return member.ErrRFIDExists
		}
	} else if !errors.Is(err, member.ErrMemberNotFound) {
		return fmt.Errorf("failed to check rfid: %w", err)
	}

	if existing, err := s.MemberRepository.GetByStudentID(ctx, studentID); err == nil {
		if existing.ID != selfID {
			return member.ErrStudentIDExists
		}
	} else if !errors.Is(err, member.ErrMemberNotFound) {
		return fmt.Errorf("failed to check student id: %w", err)
	}
	return nil
}

// CreateMember implements member.MemberService.
func (s *MemberServiceImpl) CreateMember(ctx context.Context, req member.CreateMemberRequest) (member.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return member.MemberResponse{}, err
	}
	if err := s.checkUnique(ctx, "", req.RFIDID, req.StudentID); err != nil {
		return member.MemberResponse{}, err
	}

	now := time.Now()
	created, err := s.MemberRepository.Create(ctx, member.Member{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      req.Name,
		StudentID: req.StudentID,
		RFIDID:    req.RFIDID,
		DutyDays:  req.DutyDays,
		Status:    member.StatusActive,
		Email:     emptyToNil(req.Email),
		Phone:     emptyToNil(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, member.ErrRFIDExists) || errors.Is(err, member.ErrStudentIDExists) {
			return member.MemberResponse{}, err
		}
		return member.MemberResponse{}, fmt.Errorf("failed to create member: %w", err)
	}
	return toResponse(created), nil
}

// GetMember implements member.MemberService.
func (s *MemberServiceImpl) GetMember(ctx context.Context, id string) (member.MemberResponse, error) {
	m, err := s.MemberRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return member.MemberResponse{}, member.ErrMemberNotFound
		}
		return member.MemberResponse{}, fmt.Errorf("failed to get member: %w", err)
	}
	return toResponse(m), nil
}

// GetMemberByRFID implements member.MemberService.
func (s *MemberServiceImpl) GetMemberByRFID(ctx context.Context, rfidID string) (member.MemberResponse, error) {
	m, err := s.MemberRepository.GetByRFID(ctx, strings.ToUpper(strings.TrimSpace(rfidID)))
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return member.MemberResponse{}, member.ErrMemberNotFound
		}
		return member.MemberResponse{}, fmt.Errorf("failed to get member by rfid: %w", err)
	}
	return toResponse(m), nil
}

// ListMembers implements member.MemberService.
func (s *MemberServiceImpl) ListMembers(ctx context.Context, filter member.MemberFilter) (member.ListMemberResponse, error) {
	if err := filter.Validate(); err != nil {
		return member.ListMemberResponse{}, err
	}

	members, total, err := s.MemberRepository.List(ctx, filter)
	if err != nil {
		return member.ListMemberResponse{}, fmt.Errorf("failed to list members: %w", err)
	}

	responses := make([]member.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, toResponse(m))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 || len(members) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return member.ListMemberResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Members:    responses,
	}, nil
}

// UpdateMember implements member.MemberService.
func (s *MemberServiceImpl) UpdateMember(ctx context.Context, req member.UpdateMemberRequest) (member.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return member.MemberResponse{}, err
	}

	m, err := s.MemberRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return member.MemberResponse{}, member.ErrMemberNotFound
		}
		return member.MemberResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.StudentID != nil {
		m.StudentID = strings.TrimSpace(*req.StudentID)
	}
	if req.RFIDID != nil {
		m.RFIDID = *req.RFIDID
	}
	if req.DutyDays != nil {
		m.DutyDays = *req.DutyDays
	}
	if req.Email != nil {
		m.Email = emptyToNil(req.Email)
	}
	if req.Phone != nil {
		m.Phone = emptyToNil(req.Phone)
	}

	if err := s.checkUnique(ctx, m.ID, m.RFIDID, m.StudentID); err != nil {
		return member.MemberResponse{}, err
	}

	m.UpdatedAt = time.Now()
	if err := s.MemberRepository.Update(ctx, m); err != nil {
		if errors.Is(err, member.ErrRFIDExists) || errors.Is(err, member.ErrStudentIDExists) || errors.Is(err, member.ErrMemberNotFound) {
			return member.MemberResponse{}, err
		}
		return member.MemberResponse{}, fmt.Errorf("failed to update member: %w", err)
	}
	return toResponse(m), nil
}

// DeleteMember implements member.MemberService. The member is only marked
// inactive; attendance history keeps pointing at it.
func (s *MemberServiceImpl) DeleteMember(ctx context.Context, id string) error {
	m, err := s.MemberRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return member.ErrMemberNotFound
		}
		return fmt.Errorf("failed to get member: %w", err)
	}
	if !m.IsActive() {
		return member.ErrMemberAlreadyInactive
	}
	if err := s.MemberRepository.SetStatus(ctx, id, member.StatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	return nil
}

// ActivateMember implements member.MemberService.
func (s *MemberServiceImpl) ActivateMember(ctx context.Context, id string) (member.MemberResponse, error) {
	m, err := s.MemberRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return member.MemberResponse{}, member.ErrMemberNotFound
		}
		return member.MemberResponse{}, fmt.Errorf("failed to get member: %w", err)
	}
	if m.IsActive() {
		return member.MemberResponse{}, member.ErrMemberAlreadyActive
	}
	if err := s.MemberRepository.SetStatus(ctx, id, member.StatusActive); err != nil {
		return member.MemberResponse{}, fmt.Errorf("failed to activate member: %w", err)
	}
	m.Status = member.StatusActive
	m.UpdatedAt = time.Now()
	return toResponse(m), nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

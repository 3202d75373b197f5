package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/member"
)

type MemberRepository struct {
	mu      sync.RWMutex
	members map[string]member.Member
}

func NewMemberRepository(seed ...member.Member) *MemberRepository {
	r := &MemberRepository{members: make(map[string]member.Member)}
	for _, m := range seed {
		r.members[m.ID] = m
	}
	return r
}

func (r *MemberRepository) Create(_ context.Context, m member.Member) (member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.RFIDID == m.RFIDID {
			return member.Member{}, member.ErrRFIDExists
		}
		if existing.StudentID == m.StudentID {
			return member.Member{}, member.ErrStudentIDExists
		}
	}
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.members[m.ID] = m
	return m, nil
}

func (r *MemberRepository) GetByID(_ context.Context, id string) (member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return member.Member{}, member.ErrMemberNotFound
	}
	return m, nil
}

func (r *MemberRepository) find(match func(member.Member) bool) (member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if match(m) {
			return m, nil
		}
	}
	return member.Member{}, member.ErrMemberNotFound
}

func (r *MemberRepository) GetByRFID(_ context.Context, rfidID string) (member.Member, error) {
	return r.find(func(m member.Member) bool { return strings.EqualFold(m.RFIDID, rfidID) })
}

func (r *MemberRepository) GetByStudentID(_ context.Context, studentID string) (member.Member, error) {
	return r.find(func(m member.Member) bool { return m.StudentID == studentID })
}

func (r *MemberRepository) sorted(match func(member.Member) bool) []member.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []member.Member
	for _, m := range r.members {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *MemberRepository) List(_ context.Context, f member.MemberFilter) ([]member.Member, int64, error) {
	out := r.sorted(func(m member.Member) bool {
		if f.Status != nil && *f.Status != "" && string(m.Status) != *f.Status {
			return false
		}
		if f.DutyDay != nil && *f.DutyDay != "" && !m.HasDutyOn(*f.DutyDay) {
			return false
		}
		if f.Search != nil && *f.Search != "" {
			q := strings.ToLower(*f.Search)
			return strings.Contains(strings.ToLower(m.Name), q) ||
				strings.Contains(strings.ToLower(m.StudentID), q) ||
				strings.Contains(strings.ToLower(m.RFIDID), q)
		}
		return true
	})
	total := int64(len(out))
	if f.Limit > 0 {
		start := min((max(f.Page, 1)-1)*f.Limit, len(out))
		out = out[start:min(start+f.Limit, len(out))]
	}
	return out, total, nil
}

func (r *MemberRepository) ListActiveByDutyDay(_ context.Context, weekday string) ([]member.Member, error) {
	return r.sorted(func(m member.Member) bool { return m.IsActive() && m.HasDutyOn(weekday) }), nil
}

func (r *MemberRepository) CountActive(_ context.Context) (int64, error) {
	return int64(len(r.sorted(func(m member.Member) bool { return m.IsActive() }))), nil
}

func (r *MemberRepository) Update(_ context.Context, m member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		return member.ErrMemberNotFound
	}
	for id, existing := range r.members {
		if id == m.ID {
			continue
		}
		if existing.RFIDID == m.RFIDID {
			return member.ErrRFIDExists
		}
		if existing.StudentID == m.StudentID {
			return member.ErrStudentIDExists
		}
	}
	m.UpdatedAt = time.Now()
	r.members[m.ID] = m
	return nil
}

func (r *MemberRepository) SetStatus(_ context.Context, id string, status member.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return member.ErrMemberNotFound
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	r.members[id] = m
	return nil
}

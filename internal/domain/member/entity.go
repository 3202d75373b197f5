package member

import (
	"time"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Member is a lab assistant with an RFID card and a weekly piket schedule.
type Member struct {
	ID        string
	Name      string
	StudentID string // NIM
	RFIDID    string
	DutyDays  []string // Indonesian weekday names, e.g. "Senin"
	Status    Status
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Member) IsActive() bool {
	return m.Status == StatusActive
}

// HasDutyOn reports whether weekday is one of the member's duty days.
func (m Member) HasDutyOn(weekday string) bool {
	for _, d := range m.DutyDays {
		if d == weekday {
			return true
		}
	}
	return false
}

func (m Member) Identity() attendance.Identity {
	return attendance.Identity{
		MemberID:  m.ID,
		StudentID: m.StudentID,
		RFIDID:    m.RFIDID,
		Name:      m.Name,
	}
}

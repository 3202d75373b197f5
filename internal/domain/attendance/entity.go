package attendance

import (
	"time"
)

// Source records who wrote an attendance row.
type Source string

const (
	SourceRFID   Source = "rfid"
	SourceManual Source = "manual"
	SourceSystem Source = "system"
)

// Attendance is one member's piket record for one calendar date.
// Status is a snapshot written with the row; read paths go through Derive.
type Attendance struct {
	ID string

	// Member reference plus the snapshot taken when the row was created.
	MemberID   string
	MemberName string
	StudentID  string
	RFIDID     string

	Date         string  // YYYY-MM-DD
	CheckInTime  *string // HH:MM:SS
	CheckOutTime *string // HH:MM:SS
	Duration     *string // HH:MM:SS
	Status       Status
	Source       Source
	Notes        *string

	AutoGenerated       bool
	AutoGeneratedReason *string
	AutoGeneratedAt     *time.Time

	AutoCheckedOut     bool
	AutoCheckoutReason *string
	AutoCheckedOutAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCheckIn reports whether a check-in time is recorded.
func (a Attendance) HasCheckIn() bool {
	return present(a.CheckInTime)
}

// HasCheckOut reports whether a check-out time is recorded.
func (a Attendance) HasCheckOut() bool {
	return present(a.CheckOutTime)
}

// Completeness counts the recorded time fields.
func (a Attendance) Completeness() int {
	n := 0
	if a.HasCheckIn() {
		n++
	}
	if a.HasCheckOut() {
		n++
	}
	return n
}

// Identity returns the member identity fields carried by the record.
func (a Attendance) Identity() Identity {
	return Identity{
		MemberID:  a.MemberID,
		StudentID: a.StudentID,
		RFIDID:    a.RFIDID,
		Name:      a.MemberName,
	}
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func strPtr(s string) *string {
	return &s
}

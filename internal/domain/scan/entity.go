package scan

import "time"

// Classification records what a scan did.
type Classification string

const (
	ClassCheckIn  Classification = "check_in"
	ClassCheckOut Classification = "check_out"
	ClassRejected Classification = "rejected"
	ClassUnknown  Classification = "unknown"
)

// Log is the append-only audit entry written for every RFID read.
type Log struct {
	ID             string
	RFIDID         string
	DeviceID       string
	ScannedAt      time.Time
	MemberID       *string
	MemberName     *string
	AttendanceID   *string
	Classification Classification
	Message        string
	CreatedAt      time.Time
}

// LiveCounts is the per-day tally kept in the fast store.
type LiveCounts struct {
	Date     string `json:"date"`
	CheckIn  int64  `json:"check_in"`
	CheckOut int64  `json:"check_out"`
}

package device

import "time"

// Device is an ESP32 scanner. ID is the identifier the firmware sends.
type Device struct {
	ID              string
	Name            string
	Location        *string
	IPAddress       *string
	FirmwareVersion *string
	LastSeenAt      *time.Time
	LastScanAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOnline reports whether the device was seen within window of now.
func (d Device) IsOnline(now time.Time, window time.Duration) bool {
	if d.LastSeenAt == nil {
		return false
	}
	return now.Sub(*d.LastSeenAt) <= window
}

package device

import (
	"strings"

	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

type HeartbeatRequest struct {
	DeviceID        string  `json:"device_id" validate:"required,max=64"`
	Name            string  `json:"name" validate:"max=100"`
	Location        *string `json:"location" validate:"omitempty,max=100"`
	FirmwareVersion *string `json:"firmware_version" validate:"omitempty,max=32"`

	// IPAddress is taken from the request, not the body.
	IPAddress string `json:"-"`
}

func (r *HeartbeatRequest) Validate() error {
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	r.Name = strings.TrimSpace(r.Name)
	return validator.Struct(r)
}

type DeviceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Location        *string `json:"location,omitempty"`
	IPAddress       *string `json:"ip_address,omitempty"`
	FirmwareVersion *string `json:"firmware_version,omitempty"`
	LastSeenAt      *string `json:"last_seen_at"`
	LastScanAt      *string `json:"last_scan_at"`
	Online          bool    `json:"online"`
}

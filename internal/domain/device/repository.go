package device

import (
	"context"
	"time"
)

type DeviceRepository interface {
	// Upsert creates the device on first heartbeat and refreshes it afterwards.
	Upsert(ctx context.Context, d Device) (Device, error)
	GetByID(ctx context.Context, id string) (Device, error)
	List(ctx context.Context) ([]Device, error)

	// TouchScan records a scan from the device, creating a stub row if needed.
	TouchScan(ctx context.Context, id string, at time.Time) error
}

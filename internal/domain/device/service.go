package device

import "context"

type DeviceService interface {
	Heartbeat(ctx context.Context, req HeartbeatRequest) (DeviceResponse, error)
	ListDevices(ctx context.Context) ([]DeviceResponse, error)

	// RecordScan updates last-seen and last-scan. Called best effort by scan ingestion.
	RecordScan(ctx context.Context, deviceID string) error
}

package scan

import "context"

// ScanService turns RFID reads into check-in and check-out transitions.
type ScanService interface {
	// Ingest always writes exactly one Log, whatever the outcome.
	Ingest(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// Reject records a read whose payload could not be decoded at all.
	Reject(ctx context.Context, deviceID, reason string)

	ListLogs(ctx context.Context, filter ScanLogFilter) (ListScanLogResponse, error)
}

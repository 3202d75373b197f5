package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

// DefaultOnlineWindow is how long after its last heartbeat a device still
// counts as online.
const DefaultOnlineWindow = 2 * time.Minute

type DeviceServiceImpl struct {
	device.DeviceRepository
	clock  clock.Clock
	window time.Duration
}

func NewDeviceService(deviceRepo device.DeviceRepository, clk clock.Clock, onlineWindow time.Duration) device.DeviceService {
	if onlineWindow <= 0 {
		onlineWindow = DefaultOnlineWindow
	}
	return &DeviceServiceImpl{
		DeviceRepository: deviceRepo,
		clock:            clk,
		window:           onlineWindow,
	}
}

// ToResponse renders d with its online flag evaluated at now.
func ToResponse(d device.Device, now time.Time, window time.Duration) device.DeviceResponse {
	return device.DeviceResponse{
		ID:              d.ID,
		Name:            d.Name,
		Location:        d.Location,
		IPAddress:       d.IPAddress,
		FirmwareVersion: d.FirmwareVersion,
		LastSeenAt:      formatTime(d.LastSeenAt, now.Location()),
		LastScanAt:      formatTime(d.LastScanAt, now.Location()),
		Online:          d.IsOnline(now, window),
	}
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("2006-01-02 15:04:05")
	return &s
}

// Heartbeat implements device.DeviceService.
func (s *DeviceServiceImpl) Heartbeat(ctx context.Context, req device.HeartbeatRequest) (device.DeviceResponse, error) {
	if err := req.Validate(); err != nil {
		return device.DeviceResponse{}, err
	}

	now := s.clock.Now()
	d := device.Device{
		ID:              req.DeviceID,
		Name:            req.Name,
		Location:        req.Location,
		FirmwareVersion: req.FirmwareVersion,
		LastSeenAt:      &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		d.IPAddress = &ip
	}

	saved, err := s.DeviceRepository.Upsert(ctx, d)
	if err != nil {
		return device.DeviceResponse{}, fmt.Errorf("failed to save heartbeat: %w", err)
	}
	return ToResponse(saved, now, s.window), nil
}

// ListDevices implements device.DeviceService.
func (s *DeviceServiceImpl) ListDevices(ctx context.Context) ([]device.DeviceResponse, error) {
	devices, err := s.DeviceRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	now := s.clock.Now()
	responses := make([]device.DeviceResponse, 0, len(devices))
	for _, d := range devices {
		responses = append(responses, ToResponse(d, now, s.window))
	}
	return responses, nil
}

// RecordScan implements device.DeviceService.
func (s *DeviceServiceImpl) RecordScan(ctx context.Context, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return device.ErrInvalidDevice
	}
	if err := s.DeviceRepository.TouchScan(ctx, deviceID, s.clock.Now()); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return err
		}
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}

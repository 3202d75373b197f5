package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/reslab/attendance-backend-go/internal/domain/device"
)

type DeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]device.Device
}

func NewDeviceRepository(seed ...device.Device) *DeviceRepository {
	r := &DeviceRepository{devices: make(map[string]device.Device)}
	for _, d := range seed {
		r.devices[d.ID] = d
	}
	return r
}

func (r *DeviceRepository) Upsert(_ context.Context, d device.Device) (device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if existing, ok := r.devices[d.ID]; ok {
		d.CreatedAt = existing.CreatedAt
		if d.LastScanAt == nil {
			d.LastScanAt = existing.LastScanAt
		}
		if d.Name == "" {
			d.Name = existing.Name
		}
	} else {
		d.CreatedAt = now
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	d.UpdatedAt = now
	r.devices[d.ID] = d
	return d, nil
}

func (r *DeviceRepository) GetByID(_ context.Context, id string) (device.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	if !ok {
		return device.Device{}, device.ErrDeviceNotFound
	}
	return d, nil
}

func (r *DeviceRepository) List(_ context.Context) ([]device.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]device.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DeviceRepository) TouchScan(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		d = device.Device{ID: id, Name: id, CreatedAt: at}
	}
	d.LastSeenAt = &at
	d.LastScanAt = &at
	d.UpdatedAt = at
	r.devices[id] = d
	return nil
}

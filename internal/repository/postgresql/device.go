package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

const deviceColumns = `id, name, location, ip_address, firmware_version, last_seen_at, last_scan_at, created_at, updated_at`

func scanDevice(row pgx.Row) (device.Device, error) {
	var d device.Device
	err := row.Scan(
		&d.ID, &d.Name, &d.Location, &d.IPAddress, &d.FirmwareVersion,
		&d.LastSeenAt, &d.LastScanAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Upsert implements device.DeviceRepository.
func (r *deviceRepository) Upsert(ctx context.Context, d device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (id, name, location, ip_address, firmware_version, last_seen_at)
		VALUES ($1::text, CASE WHEN $2::text = '' THEN $1::text ELSE $2::text END, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = CASE WHEN $2::text = '' THEN devices.name ELSE EXCLUDED.name END,
			location = COALESCE(EXCLUDED.location, devices.location),
			ip_address = COALESCE(EXCLUDED.ip_address, devices.ip_address),
			firmware_version = COALESCE(EXCLUDED.firmware_version, devices.firmware_version),
			last_seen_at = EXCLUDED.last_seen_at,
			updated_at = NOW()
		RETURNING ` + deviceColumns

	saved, err := scanDevice(q.QueryRow(ctx, query,
		d.ID, d.Name, d.Location, d.IPAddress, d.FirmwareVersion, d.LastSeenAt,
	))
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to upsert device: %w", err)
	}
	return saved, nil
}

// GetByID implements device.DeviceRepository.
func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// List implements device.DeviceRepository.
func (r *deviceRepository) List(ctx context.Context) ([]device.Device, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []device.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device rows: %w", err)
	}
	return devices, nil
}

// TouchScan implements device.DeviceRepository.
func (r *deviceRepository) TouchScan(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (id, name, last_seen_at, last_scan_at)
		VALUES ($1, $1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			last_scan_at = EXCLUDED.last_scan_at,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	return nil
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepository{
		db: db,
	}
}

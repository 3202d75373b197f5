package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/device"
	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/repository/postgresql"
)

func TestScanLogRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewScanLogRepository(db)
	ctx := context.Background()
	loc := clock.MustLoadLocation(clock.DefaultTimezone)

	// 06:30 WIB on the 5th is still the 4th in UTC; the filter uses the local day.
	times := []time.Time{
		time.Date(2024, 3, 4, 23, 30, 0, 0, loc),
		time.Date(2024, 3, 5, 6, 30, 0, 0, loc),
	}
	for i, at := range times {
		_, err := repo.Create(ctx, scan.Log{
			ID: []string{"l1", "l2"}[i], RFIDID: "A1", DeviceID: "esp-1", ScannedAt: at, Classification: scan.ClassCheckIn,
		})
		require.NoError(t, err)
	}

	date := "2024-03-05"
	logs, total, err := repo.List(ctx, scan.ScanLogFilter{Date: &date, Page: 1, Limit: 10}, loc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "l2", logs[0].ID)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "l2", recent[0].ID)
}

func TestDeviceRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewDeviceRepository(db)
	ctx := context.Background()
	now := time.Now()

	loc := "Lab 1"
	saved, err := repo.Upsert(ctx, device.Device{ID: "esp-1", Name: "Door", Location: &loc, LastSeenAt: &now})
	require.NoError(t, err)
	assert.Equal(t, "Door", saved.Name)

	// A heartbeat without a name keeps the stored one.
	saved, err = repo.Upsert(ctx, device.Device{ID: "esp-1", LastSeenAt: &now})
	require.NoError(t, err)
	assert.Equal(t, "Door", saved.Name)
	require.NotNil(t, saved.Location)

	require.NoError(t, repo.TouchScan(ctx, "esp-2", now))
	got, err := repo.GetByID(ctx, "esp-2")
	require.NoError(t, err)
	assert.Equal(t, "esp-2", got.Name)
	assert.NotNil(t, got.LastScanAt)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

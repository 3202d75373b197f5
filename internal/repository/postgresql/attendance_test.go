package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/repository/postgresql"
)

func str(s string) *string { return &s }

func newAttendance(memberID, name, date string) attendance.Attendance {
	return attendance.Attendance{
		ID:         uuid.Must(uuid.NewV7()).String(),
		MemberID:   memberID,
		MemberName: name,
		StudentID:  "NIM-" + memberID,
		RFIDID:     "RF-" + memberID,
		Date:       date,
		Status:     attendance.StatusBelumPiket,
		Source:     attendance.SourceRFID,
	}
}

func TestAttendanceRepository_CRUD(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	a := newAttendance("m1", "Budi Santoso", "2024-03-04")
	a.CheckInTime = str("08:00:00")
	a.Status = attendance.StatusSedangPiket
	created, err := repo.Create(ctx, a)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MemberID)
	require.NotNil(t, got.CheckInTime)
	assert.Equal(t, "08:00:00", *got.CheckInTime)
	assert.Nil(t, got.CheckOutTime)

	open, err := repo.ListOpenByDate(ctx, "2024-03-04")
	require.NoError(t, err)
	assert.Len(t, open, 1)

	now := time.Now()
	got.CheckOutTime = str("09:15:00")
	got.Duration = str("01:15:00")
	got.Status = attendance.StatusHadir
	got.AutoCheckedOutAt = &now
	require.NoError(t, repo.Update(ctx, got))

	open, err = repo.ListOpenByDate(ctx, "2024-03-04")
	require.NoError(t, err)
	assert.Empty(t, open)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), attendance.ErrAttendanceNotFound)
	assert.ErrorIs(t, repo.Update(ctx, got), attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ExistsForIdentity(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newAttendance("", "  Budi   Santoso ", "2024-03-04"))
	require.NoError(t, err)

	exists, err := repo.ExistsForIdentity(ctx, "2024-03-04", attendance.Identity{MemberID: "other", Name: "budi santoso"})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForIdentity(ctx, "2024-03-05", attendance.Identity{Name: "budi santoso"})
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsForIdentity(ctx, "2024-03-04", attendance.Identity{MemberID: "m9"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAttendanceRepository_ListAndRange(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	for _, a := range []attendance.Attendance{
		newAttendance("m1", "Budi", "2024-03-04"),
		newAttendance("m2", "Sari", "2024-03-04"),
		newAttendance("m1", "Budi", "2024-03-05"),
	} {
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	search := "sar"
	list, total, err := repo.List(ctx, attendance.AttendanceFilter{Search: &search, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Sari", list[0].MemberName)

	list, total, err = repo.List(ctx, attendance.AttendanceFilter{Page: 2, Limit: 2, SortBy: "date", SortOrder: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-03-05", list[0].Date)

	memberID := "m1"
	rng, err := repo.ListRange(ctx, "2024-03-01", "2024-03-31", &memberID)
	require.NoError(t, err)
	assert.Len(t, rng, 2)

	rng, err = repo.ListRange(ctx, "2024-03-04", "2024-03-04", nil)
	require.NoError(t, err)
	assert.Len(t, rng, 2)
}

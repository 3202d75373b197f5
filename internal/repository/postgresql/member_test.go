package postgresql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/repository/postgresql"
)

func TestMemberRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewMemberRepository(db)
	ctx := context.Background()

	budi := member.Member{ID: "m1", Name: "Budi", StudentID: "2110001", RFIDID: "A1B2C3", DutyDays: []string{"Senin", "Rabu"}, Status: member.StatusActive}
	_, err := repo.Create(ctx, budi)
	require.NoError(t, err)

	_, err = repo.Create(ctx, member.Member{ID: "m2", Name: "Dup", StudentID: "2110009", RFIDID: "a1b2c3", Status: member.StatusActive})
	assert.ErrorIs(t, err, member.ErrRFIDExists)
	_, err = repo.Create(ctx, member.Member{ID: "m3", Name: "Dup", StudentID: "2110001", RFIDID: "FFFF", Status: member.StatusActive})
	assert.ErrorIs(t, err, member.ErrStudentIDExists)

	got, err := repo.GetByRFID(ctx, "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, []string{"Senin", "Rabu"}, got.DutyDays)

	scheduled, err := repo.ListActiveByDutyDay(ctx, "Rabu")
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)

	require.NoError(t, repo.SetStatus(ctx, "m1", member.StatusInactive))
	scheduled, err = repo.ListActiveByDutyDay(ctx, "Rabu")
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	n, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestAdminRepository(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAdminRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, auth.Admin{ID: "a1", Username: "admin", PasswordHash: "x", Name: "Admin"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, auth.Admin{ID: "a2", Username: "admin", PasswordHash: "x", Name: "Admin"})
	assert.ErrorIs(t, err, auth.ErrUsernameExists)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, auth.ErrAdminNotFound)
}

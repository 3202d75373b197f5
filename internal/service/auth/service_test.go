package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
	"github.com/reslab/attendance-backend-go/internal/repository/memory"
)

const testSecret = "test-secret-key-for-jwt"

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time           { return c.now }
func (c *stepClock) Location() *time.Location { return time.UTC }

func setupAuthService(t *testing.T) (auth.AuthService, *stepClock) {
	t.Helper()
	clk := &stepClock{now: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := NewAuthService(memory.NewAdminRepository(), jwt.NewJWTService(testSecret, time.Hour), NewLoginLimiter(clk, 0, 0))
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin", "password123", "Lab Admin"))
	return svc, clk
}

func TestLogin_Success(t *testing.T) {
	svc, _ := setupAuthService(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Username: " ADMIN ", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "admin", resp.Admin.Username)
	assert.Equal(t, "Lab Admin", resp.Admin.Name)

	me, err := svc.Me(context.Background(), resp.Admin.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin, me)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Username: "", Password: ""})
	var ve validator.ValidationErrors
	assert.ErrorAs(t, err, &ve)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, clk := setupAuthService(t)
	ctx := context.Background()

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		_, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "wrong"})
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	// Correct password is refused while locked.
	_, err = svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	clk.now = clk.now.Add(DefaultLockout + time.Second)
	_, err = svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "password123"})
	assert.NoError(t, err)
}

func TestLoginLimiter_ResetOnSuccess(t *testing.T) {
	clk := &stepClock{now: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(clk, 2, time.Minute)

	assert.False(t, l.Fail("a"))
	l.Reset("a")
	assert.False(t, l.Fail("a"))
	assert.True(t, l.Fail("a"))
	assert.True(t, l.Locked("a"))
	assert.False(t, l.Locked("b"))
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	repo := memory.NewAdminRepository()
	svc := NewAuthService(repo, jwt.NewJWTService(testSecret, time.Hour), NewLoginLimiter(clock.Fixed{T: time.Now()}, 0, 0))
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "first", ""))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "second", ""))

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Name)

	_, err = svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "first"})
	assert.NoError(t, err)

	// Empty bootstrap credentials are a no-op.
	assert.NoError(t, svc.EnsureAdmin(ctx, "", "", ""))
}

func TestMe_UnknownAdmin(t *testing.T) {
	svc, _ := setupAuthService(t)
	_, err := svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	auth.AdminRepository
	jwt.Service
	limiter *LoginLimiter
}

func NewAuthService(adminRepository auth.AdminRepository, jwtService jwt.Service, limiter *LoginLimiter) auth.AuthService {
	return &AuthServiceImpl{
		AdminRepository: adminRepository,
		Service:         jwtService,
		limiter:         limiter,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toAdminResponse(admin auth.Admin) auth.AdminResponse {
	return auth.AdminResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Name:     admin.Name,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	if a.limiter.Locked(loginReq.Username) {
		return auth.TokenResponse{}, auth.ErrAccountLocked
	}

	adminData, err := a.AdminRepository.GetByUsername(ctx, loginReq.Username)
	if err != nil {
		if errors.Is(err, auth.ErrAdminNotFound) {
			a.limiter.Fail(loginReq.Username)
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get admin by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminData.PasswordHash), []byte(loginReq.Password)); err != nil {
		if a.limiter.Fail(loginReq.Username) {
			return auth.TokenResponse{}, auth.ErrAccountLocked
		}
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	a.limiter.Reset(loginReq.Username)

	token, expiresIn, err := a.Service.GenerateAccessToken(adminData.ID, adminData.Username)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Admin:       toAdminResponse(adminData),
	}, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, adminID string) (auth.AdminResponse, error) {
	adminData, err := a.AdminRepository.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, auth.ErrAdminNotFound) {
			return auth.AdminResponse{}, auth.ErrInvalidToken
		}
		return auth.AdminResponse{}, fmt.Errorf("failed to get admin: %w", err)
	}
	return toAdminResponse(adminData), nil
}

// EnsureAdmin implements auth.AuthService.
func (a *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, password, name string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}

	_, err := a.AdminRepository.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrAdminNotFound) {
		return fmt.Errorf("failed to get admin by username: %w", err)
	}

	hashed, err := a.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if name == "" {
		name = username
	}

	now := time.Now()
	_, err = a.AdminRepository.Create(ctx, auth.Admin{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     username,
		PasswordHash: hashed,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, auth.ErrUsernameExists) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, adminID string) (AdminResponse, error)

	// EnsureAdmin creates the bootstrap admin when no admin with that username exists.
	EnsureAdmin(ctx context.Context, username, password, name string) error
}

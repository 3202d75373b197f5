package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("too many failed attempts, try again later")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrUsernameExists     = errors.New("username already exists")
)

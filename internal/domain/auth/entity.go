package auth

import "time"

// Admin is a lab administrator allowed to use the management API.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

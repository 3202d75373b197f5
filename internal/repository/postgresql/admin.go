package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
)

type adminRepository struct {
	db *database.DB
}

func (r *adminRepository) getOne(ctx context.Context, where string, arg any) (auth.Admin, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, username, password_hash, name, created_at, updated_at FROM admins WHERE ` + where

	var a auth.Admin
	err := q.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Admin{}, auth.ErrAdminNotFound
		}
		return auth.Admin{}, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}

// GetByUsername implements auth.AdminRepository.
func (r *adminRepository) GetByUsername(ctx context.Context, username string) (auth.Admin, error) {
	return r.getOne(ctx, "username = $1", username)
}

// GetByID implements auth.AdminRepository.
func (r *adminRepository) GetByID(ctx context.Context, id string) (auth.Admin, error) {
	return r.getOne(ctx, "id = $1", id)
}

// Create implements auth.AdminRepository.
func (r *adminRepository) Create(ctx context.Context, a auth.Admin) (auth.Admin, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO admins (id, username, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, a.ID, a.Username, a.PasswordHash, a.Name).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) != "" {
			return auth.Admin{}, auth.ErrUsernameExists
		}
		return auth.Admin{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return a, nil
}

func NewAdminRepository(db *database.DB) auth.AdminRepository {
	return &adminRepository{
		db: db,
	}
}

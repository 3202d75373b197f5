package auth

import "context"

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (Admin, error)
	GetByID(ctx context.Context, id string) (Admin, error)
	Create(ctx context.Context, admin Admin) (Admin, error)
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
)

type AdminRepository struct {
	mu     sync.RWMutex
	admins map[string]auth.Admin
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[string]auth.Admin)}
}

func (r *AdminRepository) GetByUsername(_ context.Context, username string) (auth.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return auth.Admin{}, auth.ErrAdminNotFound
}

func (r *AdminRepository) GetByID(_ context.Context, id string) (auth.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok {
		return auth.Admin{}, auth.ErrAdminNotFound
	}
	return a, nil
}

func (r *AdminRepository) Create(_ context.Context, a auth.Admin) (auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Username == a.Username {
			return auth.Admin{}, auth.ErrUsernameExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.admins[a.ID] = a
	return a, nil
}

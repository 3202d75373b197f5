package auth

import (
	"strings"

	"github.com/reslab/attendance-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	return validator.Struct(r)
}

type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Admin       AdminResponse `json:"admin"`
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/handler/http/middleware"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// Login handles POST /auth/login
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	token, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Warn("Login failed", "username", loginReq.Username, "ip", clientIP(r), "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", token)
}

// Me handles GET /auth/me
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	admin, err := a.authService.Me(r.Context(), middleware.AdminID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, admin)
}

type sseTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEToken handles GET /auth/sse-token. EventSource cannot send an
// Authorization header, so the stream takes this short-lived token instead.
func (a *AuthHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.AdminID(r)
	if adminID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := a.jwtService.GenerateSSEToken(adminID)
	if err != nil {
		slog.Error("GenerateSSEToken error", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, sseTokenResponse{Token: token, ExpiresIn: expiresIn})
}

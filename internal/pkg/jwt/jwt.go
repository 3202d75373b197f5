package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(adminID, username string) (token string, expiresIn int64, err error)
	GenerateSSEToken(adminID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (adminID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTTL time.Duration
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTTL time.Duration) Service {
	if accessTTL <= 0 {
		accessTTL = 12 * time.Hour
	}
	return &JWTService{
		accessTTL: accessTTL,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(adminID, username string) (token string, expiresIn int64, err error) {
	expiresAt := time.Now().Add(j.accessTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"admin_id": adminID,
		"username": username,
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	})
	return tokenString, int64(j.accessTTL.Seconds()), err
}

// GenerateSSEToken generates a short-lived token for SSE connections, which
// cannot send an Authorization header from the browser.
func (j *JWTService) GenerateSSEToken(adminID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"admin_id": adminID,
		"type":     TokenTypeSSE,
		"exp":      expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the admin ID
func (j *JWTService) ValidateSSEToken(tokenString string) (adminID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	adminIDVal, ok := token.Get("admin_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	adminID, ok = adminIDVal.(string)
	if !ok || adminID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return adminID, nil
}

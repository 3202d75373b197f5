package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/reslab/attendance-backend-go/internal/domain/auth"
	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
	"github.com/reslab/attendance-backend-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token. It must run
// after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if AdminID(r) == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// AdminID extracts admin_id from the verified token claims.
func AdminID(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if id, ok := claims["admin_id"].(string); ok {
		return id
	}
	return ""
}

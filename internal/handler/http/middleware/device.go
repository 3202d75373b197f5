package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/reslab/attendance-backend-go/internal/handler/http/response"
)

const DeviceKeyHeader = "X-Device-Key"

// DeviceKey guards scanner endpoints with a shared key. An empty key leaves
// the routes open, which is how bench setups run.
func DeviceKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(DeviceKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				response.Unauthorized(w, "Invalid device key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

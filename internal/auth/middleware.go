package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/coopfin/loan-engine/pkg/response"
)

// Middleware validates the bearer token and attaches the caller's claims to
// the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				response.Unauthorized(w, "Token is invalid or expired")
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				response.Unauthorized(w, "Token is invalid or expired")
				return
			}

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role does not match. Runs after
// Middleware, before any business data is read.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			if claims.Role != role {
				response.Forbidden(w, "Access denied! This operation requires the "+role+" role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireInternalToken guards endpoints meant only for the internal
// scheduler. The sweep must never be publicly triggerable.
func RequireInternalToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get("X-Internal-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				response.Forbidden(w, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

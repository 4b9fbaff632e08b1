package middleware

import (
	"net/http"
	"strings"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/auth"
)

// AuthMiddleware creates an authentication middleware that requires a valid
// Bearer token and attaches the authenticated user to the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Tokens are only issued to active users.
			user := &domain.User{
				ID:     claims.UserID,
				Email:  claims.Email,
				Name:   claims.Name,
				Role:   claims.Role,
				Active: true,
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
		})
	}
}

// HeaderAuth builds the user from plain request headers. For local
// development and tests only; never enable in production.
func HeaderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		role := domain.Role(r.Header.Get("X-User-Role"))
		if !role.IsValid() {
			role = domain.RoleMember
		}

		user := &domain.User{
			ID:     id,
			Email:  r.Header.Get("X-User-Email"),
			Name:   r.Header.Get("X-User-Name"),
			Role:   role,
			Active: true,
		}

		next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
	})
}

// RequireAdmin rejects non-admin callers before the handler runs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := domain.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if user.Role != domain.RoleAdmin {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

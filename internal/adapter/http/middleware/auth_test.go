package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate(&domain.User{ID: "user-1", Email: "u@example.com", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = domain.UserFromContext(r.Context())
	})
	wrapped := AuthMiddleware(manager)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.ID != "user-1" || !got.Active {
		t.Fatalf("expected authenticated user in context, got %+v", got)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})
	wrapped := AuthMiddleware(manager)(next)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestHeaderAuth(t *testing.T) {
	var got *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = domain.UserFromContext(r.Context())
	})
	wrapped := HeaderAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Role", "admin")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if got == nil || got.ID != "user-1" || got.Role != domain.RoleAdmin {
		t.Fatalf("expected header user in context, got %+v", got)
	}

	// Unknown roles fall back to member.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("X-User-Role", "superuser")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != domain.RoleMember {
		t.Fatalf("expected member fallback, got %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := RequireAdmin(next)

	// No user in context.
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Member.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(domain.ContextWithUser(req.Context(), &domain.User{ID: "u", Role: domain.RoleMember}))
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// Admin.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(domain.ContextWithUser(req.Context(), &domain.User{ID: "a", Role: domain.RoleAdmin}))
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/requests/01ABC123", "/api/v1/requests/:id"},
		{"/api/v1/requests/01ABC123/accept", "/api/v1/requests/:id/accept"},
		{"/api/v1/accounts/01ABC123/transactions", "/api/v1/accounts/:id/transactions"},
		{"/api/v1/requests/", "/api/v1/requests/"},
		{"/api/v1/requests", "/api/v1/requests"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

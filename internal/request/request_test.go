package request

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "X-Forwarded-For single IP",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.7",
		},
		{
			name:     "X-Forwarded-For chain takes first",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.7",
		},
		{
			name:     "X-Real-IP fallback",
			headers:  map[string]string{"X-Real-IP": " 198.51.100.4 "},
			remote:   "10.0.0.1:1234",
			expected: "198.51.100.4",
		},
		{
			name:     "RemoteAddr fallback",
			remote:   "10.0.0.1:1234",
			expected: "10.0.0.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := ClientIP(req); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	if u := UserFromContext(req); u != nil {
		t.Errorf("Expected nil user on bare request, got %+v", u)
	}

	user := &models.User{ID: uuid.New(), ProviderUID: "sub-1"}
	req = req.WithContext(WithUser(req.Context(), user))

	got := UserFromContext(req)
	if got == nil {
		t.Fatal("Expected user from context, got nil")
	}
	if got.ID != user.ID {
		t.Errorf("Expected user ID %s, got %s", user.ID, got.ID)
	}
}

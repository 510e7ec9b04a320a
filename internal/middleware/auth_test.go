package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
	"github.com/khushik17/notesweb/internal/request"
)

type fakeUserRepo struct {
	findOrCreateCalls int
	users             map[string]*models.User
	err               error
}

func (f *fakeUserRepo) FindOrCreate(ctx context.Context, providerUID, email string, name *string) (*models.User, error) {
	f.findOrCreateCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.users == nil {
		f.users = make(map[string]*models.User)
	}
	if u, ok := f.users[providerUID]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.New(), ProviderUID: providerUID, Email: email, Name: name}
	f.users[providerUID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByProviderUID(ctx context.Context, providerUID string) (*models.User, error) {
	if u, ok := f.users[providerUID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}

type fakeVerifier struct {
	claims *models.JWTClaims
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func okHandler(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = request.UserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	verifier := &fakeVerifier{}
	var gotUser *models.User
	handler := Auth(repo, verifier, true, zap.NewNop())(okHandler(&gotUser))

	req := httptest.NewRequest("GET", "/notes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if verifier.calls != 0 {
		t.Error("Verifier should not be called without a header")
	}
	if repo.findOrCreateCalls != 0 {
		t.Error("Store should not be touched without a header")
	}
}

func TestAuth_NonBearerScheme(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	verifier := &fakeVerifier{}
	var gotUser *models.User
	handler := Auth(repo, verifier, true, zap.NewNop())(okHandler(&gotUser))

	req := httptest.NewRequest("GET", "/notes", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if repo.findOrCreateCalls != 0 {
		t.Error("Store should not be touched for a non-Bearer scheme")
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	verifier := &fakeVerifier{err: fmt.Errorf("token expired")}
	var gotUser *models.User

	t.Run("production elides detail", func(t *testing.T) {
		t.Parallel()
		handler := Auth(repo, verifier, true, zap.NewNop())(okHandler(&gotUser))
		req := httptest.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if _, ok := body["detail"]; ok {
			t.Error("Expected no detail field in production mode")
		}
	})

	t.Run("development includes detail", func(t *testing.T) {
		t.Parallel()
		handler := Auth(repo, verifier, false, zap.NewNop())(okHandler(&gotUser))
		req := httptest.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body["detail"] != "token expired" {
			t.Errorf("Expected detail 'token expired', got %v", body["detail"])
		}
	})
}

func TestAuth_ResolvesUserOnce(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	verifier := &fakeVerifier{claims: &models.JWTClaims{
		Sub:   "subject-1",
		Email: "alice@example.com",
	}}
	var gotUser *models.User
	handler := Auth(repo, verifier, true, zap.NewNop())(okHandler(&gotUser))

	var firstID uuid.UUID
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if gotUser == nil {
			t.Fatal("Expected user attached to context")
		}
		if i == 0 {
			firstID = gotUser.ID
		} else if gotUser.ID != firstID {
			t.Error("Expected the same user record on repeat requests")
		}
	}

	if len(repo.users) != 1 {
		t.Errorf("Expected exactly one user record, got %d", len(repo.users))
	}
}

func TestAuth_NameFallsBackToEmailLocalPart(t *testing.T) {
	t.Parallel()

	repo := &fakeUserRepo{}
	verifier := &fakeVerifier{claims: &models.JWTClaims{
		Sub:   "subject-2",
		Email: "bob@example.com",
	}}
	var gotUser *models.User
	handler := Auth(repo, verifier, true, zap.NewNop())(okHandler(&gotUser))

	req := httptest.NewRequest("GET", "/notes", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if gotUser == nil || gotUser.Name == nil {
		t.Fatal("Expected user with derived name")
	}
	if *gotUser.Name != "bob" {
		t.Errorf("Expected derived name 'bob', got %q", *gotUser.Name)
	}
}

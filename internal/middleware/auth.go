package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/models"
	"github.com/khushik17/notesweb/internal/request"
	"github.com/khushik17/notesweb/internal/services/oidc"
)

// Auth creates the authentication gate: it extracts the bearer token, verifies
// it against the identity provider, resolves or lazily creates the user record
// for the token's subject, and attaches it to the request context.
//
// Requests without a well-formed Bearer header are rejected before any store
// access. When production is false, rejection bodies carry the verification
// failure detail; in production it is elided.
func Auth(users database.UserRepositoryInterface, verifier oidc.TokenVerifier, production bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAuthError(w, "No token provided", nil, production, logger)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondAuthError(w, "No token provided", nil, production, logger)
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, parts[1])
			if err != nil {
				logger.Warn("token_verification_failed", zap.Error(err))
				respondAuthError(w, "Unauthorized", err, production, logger)
				return
			}

			var name *string
			derived := models.DeriveName(claims.Name, claims.Email)
			if derived != "" {
				name = &derived
			}

			user, err := users.FindOrCreate(ctx, claims.Sub, claims.Email, name)
			if err != nil {
				logger.Error("user_resolution_failed",
					zap.String("subject", claims.Sub),
					zap.Error(err),
				)
				respondError(w, http.StatusInternalServerError, "Failed to resolve user")
				return
			}

			ctx = request.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondAuthError(w http.ResponseWriter, message string, cause error, production bool, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := map[string]any{
		"error": message,
	}
	if cause != nil && !production {
		response["detail"] = cause.Error()
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]any{"error": message}); err != nil {
		_ = err
	}
}

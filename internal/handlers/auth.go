package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/khushik17/notesweb/internal/request"
	"github.com/khushik17/notesweb/internal/services/oidc"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcProvider *oidc.Provider
	providerName string
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oidcProvider *oidc.Provider, providerName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oidcProvider: oidcProvider,
		providerName: providerName,
		logger:       logger,
	}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.GetOIDCLogin).Methods("GET")
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetOIDCLogin returns the identity-provider configuration the frontend
// needs to start a sign-in flow
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	loginConfig, err := h.oidcProvider.GetLoginConfig(r.Context(), h.providerName)
	if err != nil {
		h.logger.Error("failed to load OIDC login config", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get login configuration")
		return
	}

	respondJSON(w, http.StatusOK, loginConfig)
}

// GetMe returns the authenticated user's profile
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

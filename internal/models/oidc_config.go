package models

import (
	"time"

	"github.com/google/uuid"
)

// OIDCConfig represents identity-provider configuration for token verification
// and frontend login. Stored in the database with env-var fallback.
type OIDCConfig struct {
	ID           uuid.UUID `json:"id"`
	Provider     string    `json:"provider"`
	Issuer       string    `json:"issuer"`
	ClientID     string    `json:"client_id"`
	ClientSecret *string   `json:"client_secret,omitempty"` // Optional for public clients
	RedirectURI  string    `json:"redirect_uri"`
	JWKSUrl      *string   `json:"jwks_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

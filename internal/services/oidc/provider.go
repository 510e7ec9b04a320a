package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/models"
)

// Provider resolves identity-provider configuration, preferring the database
// and falling back to env-supplied issuer/JWKS settings.
type Provider struct {
	repo           *database.OIDCConfigRepository
	fallbackIssuer string
	fallbackJWKS   string
}

// NewProvider creates a new provider config manager. fallbackIssuer and
// fallbackJWKS come from the environment and apply when the database has no
// row for the requested provider.
func NewProvider(repo *database.OIDCConfigRepository, fallbackIssuer, fallbackJWKS string) *Provider {
	return &Provider{
		repo:           repo,
		fallbackIssuer: fallbackIssuer,
		fallbackJWKS:   fallbackJWKS,
	}
}

// GetConfig retrieves configuration for a provider.
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.repo.GetByProvider(ctx, providerName)
	if err == nil {
		return config, nil
	}

	if p.fallbackIssuer == "" {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}

	cfg := &models.OIDCConfig{
		Provider: providerName,
		Issuer:   p.fallbackIssuer,
	}
	if p.fallbackJWKS != "" {
		jwks := p.fallbackJWKS
		cfg.JWKSUrl = &jwks
	}
	return cfg, nil
}

// JWKSUrlFor resolves the JWKS URL for a provider config: the explicit value
// when set, otherwise the issuer's discovery document, otherwise the
// conventional /.well-known/jwks.json path.
func (p *Provider) JWKSUrlFor(ctx context.Context, config *models.OIDCConfig) string {
	if config.JWKSUrl != nil && *config.JWKSUrl != "" {
		return *config.JWKSUrl
	}

	discoveryURL := strings.TrimSuffix(config.Issuer, "/") + "/.well-known/openid-configuration"
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err == nil {
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					_ = closeErr
				}
			}()
			var discovery struct {
				JWKSUri string `json:"jwks_uri"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&discovery); err == nil && discovery.JWKSUri != "" {
				return discovery.JWKSUri
			}
		} else if resp != nil {
			_ = resp.Body.Close()
		}
	}

	return strings.TrimSuffix(config.Issuer, "/") + "/.well-known/jwks.json"
}

// LoginConfig is what the frontend needs to start a provider login.
type LoginConfig struct {
	Provider    string `json:"provider"`
	Issuer      string `json:"issuer"`
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	AuthURL     string `json:"auth_url"`
}

// GetLoginConfig returns the configuration needed for frontend login.
func (p *Provider) GetLoginConfig(ctx context.Context, providerName string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	client := NewClient(config)

	return &LoginConfig{
		Provider:    config.Provider,
		Issuer:      config.Issuer,
		ClientID:    config.ClientID,
		RedirectURI: config.RedirectURI,
		AuthURL:     client.AuthCodeURL("login"),
	}, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
)

// OIDCConfigRepository handles identity-provider configuration in the database.
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository.
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

// GetByProvider retrieves OIDC configuration for a named provider.
// Wraps sql.ErrNoRows when the provider is not configured.
func (r *OIDCConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	c := &models.OIDCConfig{}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config WHERE provider = $1
	`, provider)
	err := row.Scan(
		&c.ID,
		&c.Provider,
		&c.Issuer,
		&c.ClientID,
		&c.ClientSecret,
		&c.RedirectURI,
		&c.JWKSUrl,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("OIDC config not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get OIDC config: %w", err)
	}
	return c, nil
}

// GetAll lists every configured provider.
func (r *OIDCConfigRepository) GetAll(ctx context.Context) ([]*models.OIDCConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("list OIDC configs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var configs []*models.OIDCConfig
	for rows.Next() {
		c := &models.OIDCConfig{}
		if err := rows.Scan(
			&c.ID,
			&c.Provider,
			&c.Issuer,
			&c.ClientID,
			&c.ClientSecret,
			&c.RedirectURI,
			&c.JWKSUrl,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan OIDC config: %w", err)
		}
		configs = append(configs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate OIDC configs: %w", err)
	}

	return configs, nil
}

// Set upserts the configuration for a provider.
func (r *OIDCConfigRepository) Set(ctx context.Context, c *models.OIDCConfig) error {
	if c.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer cannot be empty")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oidc_config (id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			redirect_uri = EXCLUDED.redirect_uri,
			jwks_url = EXCLUDED.jwks_url,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.Provider, c.Issuer, c.ClientID, c.ClientSecret, c.RedirectURI, c.JWKSUrl, now, now)
	if err != nil {
		return fmt.Errorf("set OIDC config: %w", err)
	}
	return nil
}

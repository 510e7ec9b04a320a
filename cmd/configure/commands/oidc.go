package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khushik17/notesweb/internal/config"
	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/models"
)

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	var issuer, clientID, clientSecret, redirectURI, jwksURL string

	cmd := &cobra.Command{
		Use:   "oidc <provider-name>",
		Short: "Configure an identity provider",
		Long:  "Configure the identity provider used for token verification. Provider name can be any identifier (e.g., 'firebase', 'cognito', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}

			if issuer == "" {
				return fmt.Errorf("required flag: --issuer (--client-id and --redirect-uri are needed for browser login flows)")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			oidcRepo := database.NewOIDCConfigRepository(db)

			oidcConfig := &models.OIDCConfig{
				ID:          uuid.New(),
				Provider:    provider,
				Issuer:      issuer,
				ClientID:    clientID,
				RedirectURI: redirectURI,
			}
			if clientSecret != "" {
				oidcConfig.ClientSecret = &clientSecret
			}
			if jwksURL == "" {
				jwksURL = issuer + "/.well-known/jwks.json"
			}
			oidcConfig.JWKSUrl = &jwksURL

			if err := oidcRepo.Set(context.Background(), oidcConfig); err != nil {
				return fmt.Errorf("failed to save OIDC config: %w", err)
			}

			fmt.Printf("Saved OIDC configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (optional for public clients)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (derived from issuer when omitted)")

	return cmd
}

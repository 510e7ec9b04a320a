package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khushik17/notesweb/internal/config"
	"github.com/khushik17/notesweb/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured identity providers",
		Long:  "List all identity providers configured in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			configs, err := oidcRepo.GetAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list OIDC configs: %w", err)
			}

			if len(configs) == 0 {
				fmt.Println("No identity providers configured")
				return nil
			}

			fmt.Println("Configured identity providers:")
			for _, c := range configs {
				fmt.Printf("  - Provider: %s\n", c.Provider)
				fmt.Printf("    Issuer: %s\n", c.Issuer)
				if c.ClientID != "" {
					fmt.Printf("    Client ID: %s\n", c.ClientID)
				}
				if c.RedirectURI != "" {
					fmt.Printf("    Redirect URI: %s\n", c.RedirectURI)
				}
				if c.JWKSUrl != nil {
					fmt.Printf("    JWKS URL: %s\n", *c.JWKSUrl)
				}
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}

package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/khushik17/notesweb/internal/config"
	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/notify"
	"github.com/khushik17/notesweb/internal/queue"
)

// NewTestCmd creates the test command with oidc and smtp subcommands
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test external service configuration",
		Long:  "Validate identity-provider endpoints or send an SMTP smoke-test email",
	}
	cmd.AddCommand(newTestOIDCCmd())
	cmd.AddCommand(newTestSMTPCmd())
	return cmd
}

func newTestOIDCCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "oidc",
		Short: "Test identity-provider configuration",
		Long:  "Test the identity-provider configuration by probing its endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider is required")
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
			oidcConfig, err := oidcRepo.GetByProvider(context.Background(), provider)
			if err != nil {
				return fmt.Errorf("failed to get OIDC config: %w", err)
			}

			fmt.Printf("Testing OIDC configuration for provider: %s\n", provider)
			fmt.Printf("Issuer: %s\n", oidcConfig.Issuer)

			discoveryURL := oidcConfig.Issuer + "/.well-known/openid-configuration"
			fmt.Printf("\nTesting discovery endpoint: %s\n", discoveryURL)
			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Get(discoveryURL)
			if err != nil {
				return fmt.Errorf("failed to reach discovery endpoint: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
				}
			}()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("discovery endpoint returned status: %d", resp.StatusCode)
			}
			fmt.Println("✓ Discovery endpoint is accessible")

			if oidcConfig.JWKSUrl != nil {
				fmt.Printf("\nTesting JWKS endpoint: %s\n", *oidcConfig.JWKSUrl)
				resp, err := client.Get(*oidcConfig.JWKSUrl)
				if err != nil {
					return fmt.Errorf("failed to reach JWKS endpoint: %w", err)
				}
				defer func() {
					if err := resp.Body.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
					}
				}()

				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("JWKS endpoint returned status: %d", resp.StatusCode)
				}
				fmt.Println("✓ JWKS endpoint is accessible")
			}

			fmt.Println("\n✓ OIDC configuration test passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider name to test (required)")

	return cmd
}

func newTestSMTPCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "smtp",
		Short: "Send an SMTP smoke-test email",
		Long:  "Send a sample note-created email through the configured SMTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
				return fmt.Errorf("SMTP_HOST and SMTP_FROM must be configured")
			}

			mailer := notify.NewSMTPMailer(notify.Options{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUser,
				Password: cfg.SMTPPass,
				From:     cfg.SMTPFrom,
				FromName: cfg.SMTPFromName,
				StartTLS: cfg.SMTPStartTLS,
				AppURL:   cfg.BaseURL,
			})

			fmt.Printf("Sending smoke-test email to %s via %s:%d\n", to, cfg.SMTPHost, cfg.SMTPPort)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			err = mailer.SendNoteCreated(ctx, queue.NoteCreatedPayload{
				RecipientEmail: to,
				RecipientName:  "SMTP Test",
				Title:          "SMTP smoke test",
				Description:    "If you can read this, outbound email is working.",
				NoteCreatedAt:  time.Now(),
			})
			if err != nil {
				return fmt.Errorf("failed to send test email: %w", err)
			}

			fmt.Println("✓ Test email sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address for the test email (required)")

	return cmd
}

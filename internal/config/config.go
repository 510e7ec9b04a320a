package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	AppEnv           string
	EnableHSTS       bool
	OIDCProvider     string
	OIDCIssuer       string
	OIDCAudience     string
	OIDCJWKSUrl      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
	SMTPFromName     string
	SMTPStartTLS     bool
	ServerDebugMode  bool
	WorkerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		AppEnv:           getEnv("APP_ENV", "development"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		OIDCProvider:     getEnv("OIDC_PROVIDER", "firebase"),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCAudience:     getEnv("OIDC_AUDIENCE", ""),
		OIDCJWKSUrl:      getEnv("OIDC_JWKS_URL", ""),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASS", ""),
		SMTPFrom:         getEnv("SMTP_FROM", ""),
		SMTPFromName:     getEnv("SMTP_FROM_NAME", "Notes App"),
		SMTPStartTLS:     getEnvBool("SMTP_STARTTLS", true),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for note-created email notifications")
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in production mode. Auth
// rejection bodies elide verification detail when this is true.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

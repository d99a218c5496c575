// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Metrics backends.
const (
	MetricsPrometheus = "prometheus"
	MetricsInMemory   = "inmemory"
)

// MinJWTSecretLen is the minimum signing secret length in bytes.
const MinJWTSecretLen = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Persistence: "memory" (optionally snapshotted to DataDir) or "postgres"
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataDir     string `env:"DATA_DIR"`

	// Stale-path notifications (Redis pub/sub). Empty RedisURL logs instead.
	RedisURL          string `env:"REDIS_URL"`
	RevalidateChannel string `env:"REVALIDATE_CHANNEL" envDefault:"balcao:stale"`

	// Signed POST of stale paths to the front end; optional
	RevalidateWebhookURL    string `env:"REVALIDATE_WEBHOOK_URL"`
	RevalidateWebhookSecret string `env:"REVALIDATE_WEBHOOK_SECRET"`

	// Tokens
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"balcao"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	// Creator recorded on records written outside an authenticated action
	SeedIdentity string `env:"SEED_IDENTITY" envDefault:"seed"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// "prometheus" or "inmemory"
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"prometheus"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks rules that span several variables.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StorePostgres, c.StoreDriver))
	}

	if c.MetricsBackend != MetricsPrometheus && c.MetricsBackend != MetricsInMemory {
		errs = append(errs, fmt.Errorf("METRICS_BACKEND must be %q or %q, got %q", MetricsPrometheus, MetricsInMemory, c.MetricsBackend))
	}
	if c.RevalidateWebhookURL != "" {
		if u, err := url.Parse(c.RevalidateWebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.New("REVALIDATE_WEBHOOK_URL must be an absolute http(s) URL"))
		}
		if len(c.RevalidateWebhookSecret) < 16 {
			errs = append(errs, errors.New("REVALIDATE_WEBHOOK_SECRET must be at least 16 bytes when REVALIDATE_WEBHOOK_URL is set"))
		}
	}
	if len(c.JWTSecret) < MinJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLen))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if strings.TrimSpace(c.SeedIdentity) == "" {
		errs = append(errs, errors.New("SEED_IDENTITY must not be empty"))
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.AppPort))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	if c.IsProduction() && c.CORSAllowedOrigins == "*" {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not be * in production"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

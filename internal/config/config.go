package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Leapblog/backend/pkg/config"
)

// Config holds all configuration for the Leapblog backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"leapblog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"leapblog_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"leapblog_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (session revocation store)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret            string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiryHours int    `env:"JWT_ACCESS_TOKEN_EXPIRY_HOURS" envDefault:"24"`
	JWTRefreshExpiryDays int    `env:"JWT_REFRESH_TOKEN_EXPIRY_DAYS" envDefault:"7"`

	// Email
	EmailSender string `env:"EMAIL_SENDER" envDefault:"noreply@leapblog.local"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSamplingRate float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`

	// Profiling endpoints are only reachable from these CIDRs.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.JWTAccessExpiryHours < 1 {
		return nil, fmt.Errorf("invalid access token expiry: %d hours", cfg.JWTAccessExpiryHours)
	}
	if cfg.JWTRefreshExpiryDays < 1 {
		return nil, fmt.Errorf("invalid refresh token expiry: %d days", cfg.JWTRefreshExpiryDays)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// AccessExpiry returns the access token lifetime as a duration.
func (c *Config) AccessExpiry() time.Duration {
	return time.Duration(c.JWTAccessExpiryHours) * time.Hour
}

// RefreshExpiry returns the refresh token lifetime as a duration.
func (c *Config) RefreshExpiry() time.Duration {
	return time.Duration(c.JWTRefreshExpiryDays) * 24 * time.Hour
}

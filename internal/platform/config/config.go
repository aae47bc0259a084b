package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `mapstructure:"PGSQL_URL"`
	Port          string `mapstructure:"PORT"`
	IsProduction  bool   `mapstructure:"IS_PRODUCTION"`
	EnableDBCheck bool   `mapstructure:"ENABLE_DB_CHECK"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	// JWTSecret verifies gateway-signed bearer tokens. Empty means the actor comes from X-Actor-ID.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	// RateLimit uses the ulule/limiter format, e.g. "100-M".
	RateLimit string `mapstructure:"RATE_LIMIT"`
	RedisURL  string `mapstructure:"REDIS_URL"`

	PosthogAPIKey   string `mapstructure:"POSTHOG_API_KEY"`
	PosthogEndpoint string `mapstructure:"POSTHOG_ENDPOINT"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     v.GetString("PGSQL_URL"),
		Port:            v.GetString("PORT"),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   v.GetBool("ENABLE_DB_CHECK"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		JWTSecret:       v.GetString("JWT_SECRET"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		RateLimit:       v.GetString("RATE_LIMIT"),
		RedisURL:        v.GetString("REDIS_URL"),
		PosthogAPIKey:   v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: v.GetString("POSTHOG_ENDPOINT"),
	}
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.IsProduction && cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set in production, actors are taken from the X-Actor-ID header")
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

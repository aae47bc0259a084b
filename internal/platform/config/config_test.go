package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("PGSQL_URL", "postgres://gl:gl@localhost:5432/gl")
	t.Setenv("PORT", "9090")
	t.Setenv("IS_PRODUCTION", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("PGSQL_URL", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "PGSQL_URL")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "nonsense")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "newsdesk.db", cfg.DatabaseURL)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestSecretsHaveNoProductionDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.SessionSecret)
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET environment variable is not set")

	cfg.JWTSecret = "s3cret"
	assert.EqualError(t, cfg.Validate(), "SESSION_SECRET environment variable is not set")
}

func TestSessionSecretDevelopmentDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GIN_MODE", "debug")

	cfg := Load()

	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.NoError(t, cfg.Validate())
}

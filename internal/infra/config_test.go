package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfig_EnvAndDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "env-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL", "45m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Minute, cfg.Auth.TokenTTL)
}

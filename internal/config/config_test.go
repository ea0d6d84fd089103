package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "dealer-service", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	require.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenTTL())
	require.Equal(t, 60*time.Minute, cfg.Auth.AccountTokenTTL())
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadHonorsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("REDIS_DB", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL())
	require.False(t, cfg.Postgres.RunMigrations)
	require.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := config.Load()
	require.Error(t, err)
}

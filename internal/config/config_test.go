package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("CAMPAIGN_EXPIRY_INTERVAL_SECONDS", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, time.Hour, cfg.Campaign.ExpiryInterval())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CAMPAIGN_EXPIRY_INTERVAL_SECONDS", "0")
	t.Setenv("CAMPAIGN_EXPIRY_LOCK_TTL_SECONDS", "15")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Zero(t, cfg.Campaign.ExpiryInterval())
	assert.Equal(t, 15*time.Second, cfg.Campaign.ExpiryLockTTL())
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MinConnsAboveMax(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "2")
	t.Setenv("POSTGRES_MIN_CONNS", "5")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

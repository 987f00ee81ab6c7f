package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("storefront")
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Server.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.Cache.ProfileStaleAfter())
	assert.True(t, cfg.Resilience.CircuitBreaker.Enabled)
}

func TestLoadBreakerOverrides(t *testing.T) {
	t.Setenv("CB_SERVICE_OVERRIDES", `{"orders":{"failure_threshold":2,"timeout_seconds":10}}`)

	cfg, err := Load("storefront")
	require.NoError(t, err)

	settings := cfg.Resilience.CircuitBreaker.SettingsFor("orders")
	assert.Equal(t, 2, settings.FailureThreshold)
	assert.Equal(t, 10, settings.TimeoutSeconds)
	// Unset override fields fall back to defaults
	assert.Equal(t, 1, settings.SuccessThreshold)
	assert.Equal(t, 60, settings.IntervalSeconds)
}

func TestLoadBreakerOverridesInvalidJSON(t *testing.T) {
	t.Setenv("CB_SERVICE_OVERRIDES", "{not json")

	_, err := Load("storefront")
	assert.Error(t, err)
}

func TestSettingsForUnknownService(t *testing.T) {
	cfg := CircuitBreakerConfig{
		FailureThreshold: 7,
		SuccessThreshold: 2,
		TimeoutSeconds:   20,
		IntervalSeconds:  40,
	}

	settings := cfg.SettingsFor("credentials")
	assert.Equal(t, 7, settings.FailureThreshold)
	assert.Equal(t, 2, settings.SuccessThreshold)
	assert.Equal(t, 20, settings.TimeoutSeconds)
	assert.Equal(t, 40, settings.IntervalSeconds)
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.internal", Port: "6380"}
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv pins every known key so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenWeather, cfg.Provider)
	assert.Equal(t, "secret", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 60, cfg.ProviderRatePerMinute)
	assert.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	assert.False(t, cfg.ProbeEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_PROVIDER", " OpenMeteo ")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("PROVIDER_RATE_PER_MINUTE", "30")
	t.Setenv("PROBE_INTERVAL", "1m")
	t.Setenv("PROBE_LOCATION", "Ankara")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenMeteo, cfg.Provider)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30, cfg.ProviderRatePerMinute)
	assert.True(t, cfg.ProbeEnabled())
}

func TestLoadRequiresOpenWeatherKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_PROVIDER", "weatherapi")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

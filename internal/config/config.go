package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Port     string `mapstructure:"PORT" validate:"required,numeric"`

	// Provider selects the upstream weather API.
	Provider           string `mapstructure:"WEATHER_PROVIDER" validate:"oneof=openweather openmeteo"`
	OpenWeatherAPIKey  string `mapstructure:"OPENWEATHER_API_KEY" validate:"required_if=Provider openweather"`
	OpenWeatherBaseURL string `mapstructure:"OPENWEATHER_BASE_URL" validate:"required,url"`
	OpenMeteoBaseURL   string `mapstructure:"OPENMETEO_BASE_URL" validate:"required,url"`
	GeocoderAPIKey     string `mapstructure:"GEOCODER_API_KEY"`

	HTTPTimeout           time.Duration `mapstructure:"HTTP_TIMEOUT" validate:"gt=0"`
	ProviderRatePerMinute int           `mapstructure:"PROVIDER_RATE_PER_MINUTE" validate:"min=0"`

	// ProbeInterval of 0 or an empty ProbeLocation disables the health probe.
	ProbeInterval time.Duration `mapstructure:"PROBE_INTERVAL" validate:"min=0"`
	ProbeLocation string        `mapstructure:"PROBE_LOCATION"`
}

var defaults = map[string]interface{}{
	"APP_ENV":                  "development",
	"LOG_LEVEL":                "info",
	"PORT":                     "8080",
	"WEATHER_PROVIDER":         ProviderOpenWeather,
	"OPENWEATHER_API_KEY":      "",
	"OPENWEATHER_BASE_URL":     "https://api.openweathermap.org/data/2.5",
	"OPENMETEO_BASE_URL":       "https://api.open-meteo.com/v1/forecast",
	"GEOCODER_API_KEY":         "",
	"HTTP_TIMEOUT":             "10s",
	"PROVIDER_RATE_PER_MINUTE": 60, // OpenWeatherMap free tier
	"PROBE_INTERVAL":           "15m",
	"PROBE_LOCATION":           "",
}

var validate = validator.New()

// Load reads configuration from the environment with sensible defaults.
// A .env file, if any, must already be loaded by the caller.
func Load() (*AppConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.ProbeLocation = strings.TrimSpace(cfg.ProbeLocation)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ProbeEnabled reports whether the provider health probe should run.
func (c *AppConfig) ProbeEnabled() bool {
	return c.ProbeInterval > 0 && c.ProbeLocation != ""
}

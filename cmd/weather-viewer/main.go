package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "github.com/i474232898/weather-viewer/internal/api/http"
	"github.com/i474232898/weather-viewer/internal/config"
	"github.com/i474232898/weather-viewer/internal/geo"
	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/scheduler"
	"github.com/i474232898/weather-viewer/internal/weather"
	"github.com/i474232898/weather-viewer/internal/weather/providers"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "development").Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env).WithField("service", "weather-viewer")
	if envErr != nil {
		log.Debugf("no .env file loaded: %v", envErr)
	}

	// Shared HTTP client and limiter for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff: providers.DefaultBackoff,
		Limiter: providers.PerMinute(cfg.ProviderRatePerMinute),
	}

	var provider weather.Provider
	switch cfg.Provider {
	case config.ProviderOpenMeteo:
		provider = providers.NewOpenMeteoProvider(httpCfg, cfg.OpenMeteoBaseURL, geo.NewGoogleGeocoder(cfg.GeocoderAPIKey), log)
	default:
		provider = providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, log)
	}
	log.Infof("using weather provider %s", provider.Name())

	service := weather.NewService(provider, log)

	// Periodic provider probe reported on /health.
	sched := scheduler.New(weather.NamedLocation(cfg.ProbeLocation), cfg.ProbeInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(log)
	httpapi.RegisterRoutes(app, service, sched, log)

	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}

package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-viewer/internal/logger"
)

// Service orchestrates provider lookups and forecast aggregation.
type Service struct {
	provider Provider
	now      func() time.Time
	log      logger.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, log logger.Logger) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
		log:      log.WithField("component", "weather_service"),
	}
}

// WithClock replaces the wall clock used to decide which day is in progress.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProviderName reports the configured provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrent fetches the current conditions for loc.
func (s *Service) GetCurrent(ctx context.Context, loc Location) (CurrentConditions, error) {
	if err := loc.Validate(); err != nil {
		return CurrentConditions{}, err
	}

	current, err := s.provider.Current(ctx, loc)
	if err != nil {
		s.log.Warnf("provider %s current weather failed for %s: %v", s.provider.Name(), loc.Key(), err)
		return CurrentConditions{}, fmt.Errorf("current weather for %s: %w", loc.Key(), err)
	}
	return current, nil
}

// GetForecast fetches the raw forecast for loc and aggregates it into daily
// summaries relative to today's UTC date.
func (s *Service) GetForecast(ctx context.Context, loc Location) (Forecast, error) {
	if err := loc.Validate(); err != nil {
		return Forecast{}, err
	}

	samples, err := s.provider.Forecast(ctx, loc)
	if err != nil {
		s.log.Warnf("provider %s forecast failed for %s: %v", s.provider.Name(), loc.Key(), err)
		return Forecast{}, fmt.Errorf("forecast for %s: %w", loc.Key(), err)
	}
	if len(samples) == 0 {
		s.log.Warnf("provider %s returned no forecast samples for %s", s.provider.Name(), loc.Key())
		return Forecast{}, ErrNoForecastData
	}

	summaries, skip := AggregateForecast(samples, s.now().UTC())
	s.log.Debugf("aggregated %d samples into %d days for %s (skip %d)", len(samples), len(summaries), loc.Key(), skip)

	return Forecast{
		Location:  loc.Key(),
		Summaries: summaries,
		SkipCount: skip,
	}, nil
}

// Probe checks that the provider answers for loc.
func (s *Service) Probe(ctx context.Context, loc Location) error {
	_, err := s.GetCurrent(ctx, loc)
	return err
}

package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (CurrentConditions, error)
	// Forecast returns the raw 5-day / 3-hour samples ordered by timestamp.
	Forecast(ctx context.Context, loc Location) ([]RawSample, error)
}

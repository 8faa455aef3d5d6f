package weather

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidLocation is returned when neither a name nor a coordinate pair is given.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrLocationNotFound is returned when the provider does not know the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoForecastData is returned when the provider answered with an empty forecast.
	ErrNoForecastData = errors.New("no forecast data available")
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location is a place looked up either by name or by coordinates.
// Coordinates win when both are present.
type Location struct {
	Name string   `json:"name,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// NamedLocation returns a location looked up by name.
func NamedLocation(name string) Location {
	return Location{Name: name}
}

// CoordinateLocation returns a location looked up by latitude and longitude.
func CoordinateLocation(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Validate rejects locations that carry nothing to look up.
func (l Location) Validate() error {
	if l.HasCoordinates() {
		return nil
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrInvalidLocation
	}
	return nil
}

// Key returns a canonical string for logging.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return strings.TrimSpace(l.Name)
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CurrentConditions is the normalized current-weather view of a location.
type CurrentConditions struct {
	Location     string      `json:"location"`
	Coordinates  Coordinates `json:"coordinates"`
	TemperatureC float64     `json:"temperatureC"`
	HumidityPct  float64     `json:"humidityPercent"`
	Description  string      `json:"description"`
	Condition    Condition   `json:"condition"`
	Sunrise      time.Time   `json:"sunrise"`
	Sunset       time.Time   `json:"sunset"`
	ObservedAt   time.Time   `json:"observedAt"` // always UTC
	Provider     string      `json:"provider"`
}

// RawSample is one 3-hour forecast point as supplied by a provider.
// TimestampText is in the form "2006-01-02 15:04:05" (UTC, no zone suffix).
type RawSample struct {
	TimestampText string  `json:"timestamp"`
	TemperatureC  float64 `json:"temperatureC"`
}

// DailySummary aggregates every sample of one contiguous run sharing a calendar date.
type DailySummary struct {
	Date               string  `json:"date"`        // YYYY-MM-DD
	DisplayDate        string  `json:"displayDate"` // DD-MM
	AverageTemperature float64 `json:"averageTemperatureC"`
	HighTemperature    float64 `json:"highTemperatureC"`
	LowTemperature     float64 `json:"lowTemperatureC"`
}

// Forecast is the aggregated multi-day forecast for a location.
// The first SkipCount summaries describe a day already in progress.
type Forecast struct {
	Location  string         `json:"location"`
	Summaries []DailySummary `json:"summaries"`
	SkipCount int            `json:"skipCount"`
}

// Upcoming returns the summaries that should be shown.
func (f Forecast) Upcoming() []DailySummary {
	if f.SkipCount >= len(f.Summaries) {
		return nil
	}
	return f.Summaries[f.SkipCount:]
}

// Days is the number of upcoming days.
func (f Forecast) Days() int {
	return len(f.Upcoming())
}

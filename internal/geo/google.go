// Package geo resolves place names with the Google Geocoding API.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-viewer/internal/weather"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("geocoder api key is not configured")

// Backend is the subset of the geocoder package used here.
type Backend interface {
	Geocoding(address geocoder.Address) (geocoder.Location, error)
	GeocodingReverse(location geocoder.Location) ([]geocoder.Address, error)
}

type googleBackend struct{}

func (googleBackend) Geocoding(address geocoder.Address) (geocoder.Location, error) {
	return geocoder.Geocoding(address)
}

func (googleBackend) GeocodingReverse(location geocoder.Location) ([]geocoder.Address, error) {
	return geocoder.GeocodingReverse(location)
}

// the geocoder package keeps its key in a package variable.
var setKeyOnce sync.Once

// GoogleGeocoder implements providers.Geocoder.
type GoogleGeocoder struct {
	backend Backend
	enabled bool
}

// NewGoogleGeocoder configures the Google backend with apiKey. An empty key
// yields a geocoder whose calls fail with ErrNotConfigured.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey == "" {
		return &GoogleGeocoder{}
	}
	setKeyOnce.Do(func() { geocoder.ApiKey = apiKey })
	return &GoogleGeocoder{backend: googleBackend{}, enabled: true}
}

// NewWithBackend wraps an arbitrary backend.
func NewWithBackend(b Backend) *GoogleGeocoder {
	return &GoogleGeocoder{backend: b, enabled: b != nil}
}

// Geocode returns the coordinates of a free-form place name.
func (g *GoogleGeocoder) Geocode(ctx context.Context, name string) (weather.Coordinates, error) {
	if !g.enabled {
		return weather.Coordinates{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	loc, err := g.backend.Geocoding(parseAddress(name))
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationNotFound, err)
	}
	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

// ReverseGeocode returns a display label for c, preferring "City, Country".
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, c weather.Coordinates) (string, error) {
	if !g.enabled {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addrs, err := g.backend.GeocodingReverse(geocoder.Location{Latitude: c.Lat, Longitude: c.Lon})
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", weather.ErrLocationNotFound
	}

	a := addrs[0]
	switch {
	case a.City != "" && a.Country != "":
		return a.City + ", " + a.Country, nil
	case a.City != "":
		return a.City, nil
	default:
		return a.FormattedAddress, nil
	}
}

// parseAddress splits "City, Country" style input. Anything else goes in City.
func parseAddress(name string) geocoder.Address {
	parts := strings.Split(name, ",")
	addr := geocoder.Address{City: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		addr.Country = strings.TrimSpace(parts[len(parts)-1])
	}
	return addr
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/weather"
)

// DefaultOpenMeteoBaseURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoHourLayout = "2006-01-02T15:04"
	forecastDays        = 5
	sampleStepHours     = 3
)

var errNoGeocoder = errors.New("open-meteo needs a geocoder to look up places by name")

// Geocoder resolves place names to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (weather.Coordinates, error)
	ReverseGeocode(ctx context.Context, c weather.Coordinates) (string, error)
}

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no API
// key but only understands coordinates, so names go through a Geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder Geocoder
	log      logger.Logger
}

// NewOpenMeteoProvider builds a provider; geocoder may be nil, in which case
// only coordinate lookups work.
func NewOpenMeteoProvider(httpCfg HTTPClientConfig, baseURL string, geocoder Geocoder, log logger.Logger) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	log = log.WithField("provider", "openmeteo")

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		httpCfg:  httpCfg,
		circuit:  newCircuitBreaker("openmeteo", log),
		geocoder: geocoder,
		log:      log,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Current fetches current temperature, humidity and weather code plus today's
// sunrise and sunset.
func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	coords, label, err := p.resolve(ctx, loc)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	values := url.Values{}
	values.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
	values.Set("daily", "sunrise,sunset")
	values.Set("forecast_days", "1")
	values.Set("timezone", "GMT")
	values.Set("timeformat", "unixtime")

	var payload struct {
		Current *struct {
			Time        int64   `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			Sunrise []int64 `json:"sunrise"`
			Sunset  []int64 `json:"sunset"`
		} `json:"daily"`
	}
	if err := p.get(ctx, coords, values, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	if payload.Current == nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: empty current weather payload", weather.ErrLocationNotFound)
	}

	current := weather.CurrentConditions{
		Location:     label,
		Coordinates:  coords,
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.Humidity,
		Description:  describeOpenMeteoCode(payload.Current.WeatherCode),
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
		ObservedAt:   time.Unix(payload.Current.Time, 0).UTC(),
		Provider:     p.name,
	}
	if len(payload.Daily.Sunrise) > 0 {
		current.Sunrise = time.Unix(payload.Daily.Sunrise[0], 0).UTC()
	}
	if len(payload.Daily.Sunset) > 0 {
		current.Sunset = time.Unix(payload.Daily.Sunset[0], 0).UTC()
	}
	return current, nil
}

// Forecast fetches 5 days of hourly GMT temperatures and keeps every third
// hour, yielding the same 3-hour sample stream OpenWeatherMap produces.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, loc weather.Location) ([]weather.RawSample, error) {
	coords, _, err := p.resolve(ctx, loc)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("hourly", "temperature_2m")
	values.Set("forecast_days", fmt.Sprintf("%d", forecastDays))
	values.Set("timezone", "GMT")

	var payload struct {
		Hourly struct {
			Time        []string   `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}
	if err := p.get(ctx, coords, values, &payload); err != nil {
		return nil, err
	}

	return downsampleHourly(payload.Hourly.Time, payload.Hourly.Temperature)
}

// downsampleHourly converts hourly points to 3-hour RawSamples, dropping
// missing temperatures.
func downsampleHourly(times []string, temps []*float64) ([]weather.RawSample, error) {
	if len(times) != len(temps) {
		return nil, fmt.Errorf("hourly series mismatch: %d times, %d temperatures", len(times), len(temps))
	}

	samples := make([]weather.RawSample, 0, maxForecastSamples)
	for i, raw := range times {
		ts, err := time.Parse(openMeteoHourLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("hourly entry %d: malformed time %q: %w", i, raw, err)
		}
		if ts.Hour()%sampleStepHours != 0 || temps[i] == nil {
			continue
		}
		samples = append(samples, weather.RawSample{
			TimestampText: ts.Format(weather.SampleLayout),
			TemperatureC:  *temps[i],
		})
		if len(samples) == maxForecastSamples {
			break
		}
	}
	return samples, nil
}

// resolve returns the coordinates to query and a human label for them.
func (p *OpenMeteoProvider) resolve(ctx context.Context, loc weather.Location) (weather.Coordinates, string, error) {
	if err := loc.Validate(); err != nil {
		return weather.Coordinates{}, "", err
	}

	if loc.HasCoordinates() {
		coords := weather.Coordinates{Lat: *loc.Lat, Lon: *loc.Lon}
		label := loc.Key()
		if p.geocoder != nil {
			if name, err := p.geocoder.ReverseGeocode(ctx, coords); err == nil && name != "" {
				label = name
			} else if err != nil {
				p.log.Debugf("reverse geocoding %s failed: %v", loc.Key(), err)
			}
		}
		return coords, label, nil
	}

	if p.geocoder == nil {
		return weather.Coordinates{}, "", errNoGeocoder
	}
	name := strings.TrimSpace(loc.Name)
	coords, err := p.geocoder.Geocode(ctx, name)
	if err != nil {
		return weather.Coordinates{}, "", fmt.Errorf("geocode %q: %w", name, err)
	}
	return coords, name, nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, coords weather.Coordinates, values url.Values, out interface{}) error {
	values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
	values.Set("longitude", fmt.Sprintf("%f", coords.Lon))

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode open-meteo response: %w", err)
	}
	return nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

func describeOpenMeteoCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1:
		return "mainly clear"
	case code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

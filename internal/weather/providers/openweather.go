package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// maxForecastSamples is 5 days of 3-hour steps.
const maxForecastSamples = 40

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     logger.Logger
}

// NewOpenWeatherProvider builds a provider against baseURL (DefaultOpenWeatherBaseURL when empty).
func NewOpenWeatherProvider(httpCfg HTTPClientConfig, baseURL, apiKey string, log logger.Logger) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	log = log.WithField("provider", "openweathermap")

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openweather", log),
		log:     log,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCurrentPayload struct {
	Dt    int64  `json:"dt"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Weather []owmWeatherItem `json:"weather"`
}

type owmWeatherItem struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmForecastPayload struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

// Current fetches the /weather endpoint.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	var payload owmCurrentPayload
	if err := p.get(ctx, "weather", loc, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	// A 200 without a main block is as useless as a 404.
	if payload.Main == nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: empty current weather payload", weather.ErrLocationNotFound)
	}

	observed := time.Now().UTC()
	if payload.Dt > 0 {
		observed = time.Unix(payload.Dt, 0).UTC()
	}

	description := ""
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
	}

	return weather.CurrentConditions{
		Location:     payload.Name,
		Coordinates:  weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		Description:  description,
		Condition:    mapOpenWeatherCondition(payload.Weather),
		Sunrise:      time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:       time.Unix(payload.Sys.Sunset, 0).UTC(),
		ObservedAt:   observed,
		Provider:     p.name,
	}, nil
}

// Forecast fetches the /forecast endpoint and returns its 3-hour samples in
// provider order. Every dt_txt is checked before it leaves this package.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location) ([]weather.RawSample, error) {
	var payload owmForecastPayload
	if err := p.get(ctx, "forecast", loc, &payload); err != nil {
		return nil, err
	}

	list := payload.List
	if len(list) > maxForecastSamples {
		list = list[:maxForecastSamples]
	}

	samples := make([]weather.RawSample, 0, len(list))
	for i, item := range list {
		if _, err := time.Parse(weather.SampleLayout, item.DtTxt); err != nil {
			return nil, fmt.Errorf("forecast entry %d: malformed dt_txt %q: %w", i, item.DtTxt, err)
		}
		samples = append(samples, weather.RawSample{
			TimestampText: item.DtTxt,
			TemperatureC:  item.Main.Temp,
		})
	}

	p.log.Debugf("fetched %d forecast samples for %s", len(samples), loc.Key())
	return samples, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, loc weather.Location, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}
	if err := loc.Validate(); err != nil {
		return err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if loc.HasCoordinates() {
			values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
			values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
		} else {
			values.Set("q", strings.TrimSpace(loc.Name))
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func mapOpenWeatherCondition(items []owmWeatherItem) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}

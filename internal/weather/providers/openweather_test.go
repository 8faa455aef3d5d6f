package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/weather"
)

const currentJSON = `{
  "coord": {"lon": 32.85, "lat": 39.92},
  "weather": [{"id": 600, "main": "Snow", "description": "light snow", "icon": "13d"}],
  "main": {"temp": -1.5, "feels_like": -4.2, "humidity": 86, "pressure": 1021},
  "dt": 1641038400,
  "sys": {"country": "TR", "sunrise": 1641013800, "sunset": 1641048300},
  "name": "Ankara",
  "cod": 200
}`

func testHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func forecastJSON(n int) string {
	start := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(3*i) * time.Hour)
		items = append(items, fmt.Sprintf(`{"dt": %d, "main": {"temp": %d.5}, "dt_txt": %q}`, ts.Unix(), i, ts.Format(weather.SampleLayout)))
	}
	return fmt.Sprintf(`{"cod": "200", "cnt": %d, "list": [%s], "city": {"name": "Ankara"}}`, n, strings.Join(items, ","))
}

func TestOpenWeatherCurrent(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	c, err := p.Current(context.Background(), weather.NamedLocation("Ankara"))
	require.NoError(t, err)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"Ankara"}, q["q"])
	assert.Equal(t, []string{"metric"}, q["units"])
	assert.Equal(t, []string{"key"}, q["appid"])

	assert.Equal(t, "Ankara", c.Location)
	assert.Equal(t, -1.5, c.TemperatureC)
	assert.Equal(t, 86.0, c.HumidityPct)
	assert.Equal(t, "light snow", c.Description)
	assert.Equal(t, weather.ConditionSnow, c.Condition)
	assert.Equal(t, weather.Coordinates{Lat: 39.92, Lon: 32.85}, c.Coordinates)
	assert.Equal(t, time.Unix(1641013800, 0).UTC(), c.Sunrise)
	assert.Equal(t, "openweathermap", c.Provider)
}

func TestOpenWeatherForecastByCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "39.920000", r.URL.Query().Get("lat"))
		assert.Equal(t, "32.850000", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))
		w.Write([]byte(forecastJSON(42)))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	samples, err := p.Forecast(context.Background(), weather.CoordinateLocation(39.92, 32.85))
	require.NoError(t, err)

	require.Len(t, samples, maxForecastSamples)
	assert.Equal(t, weather.RawSample{TimestampText: "2022-01-01 12:00:00", TemperatureC: 0.5}, samples[0])
	assert.Equal(t, "2022-01-02 00:00:00", samples[4].TimestampText)
}

func TestOpenWeatherForecastRejectsMalformedTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": [{"main": {"temp": 1}, "dt_txt": "01/01/2022 00:00"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	_, err := p.Forecast(context.Background(), weather.NamedLocation("Ankara"))
	assert.ErrorContains(t, err, "malformed dt_txt")
}

func TestOpenWeatherUnknownCityIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	_, err := p.Forecast(context.Background(), weather.NamedLocation("Atlantis"))

	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenWeatherServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	c, err := p.Current(context.Background(), weather.NamedLocation("Ankara"))

	require.NoError(t, err)
	assert.Equal(t, "Ankara", c.Location)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenWeatherEmptyMainIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod": 200}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(testHTTPConfig(srv.Client()), srv.URL, "key", logger.Discard())
	_, err := p.Current(context.Background(), weather.NamedLocation("Ankara"))
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	p := NewOpenWeatherProvider(testHTTPConfig(http.DefaultClient), "", "", logger.Discard())
	_, err := p.Current(context.Background(), weather.NamedLocation("Ankara"))
	assert.ErrorContains(t, err, "api key")
}

func TestMapOpenWeatherCondition(t *testing.T) {
	assert.Equal(t, weather.ConditionUnknown, mapOpenWeatherCondition(nil))
	assert.Equal(t, weather.ConditionRain, mapOpenWeatherCondition([]owmWeatherItem{{Main: "Drizzle"}}))
	assert.Equal(t, weather.ConditionMist, mapOpenWeatherCondition([]owmWeatherItem{{Main: "Fog"}}))
	assert.Equal(t, weather.ConditionStorm, mapOpenWeatherCondition([]owmWeatherItem{{Main: "Thunderstorm"}}))
}

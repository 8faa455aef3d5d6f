package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-viewer/internal/weather"
)

func sampleForecast(skip int) weather.Forecast {
	return weather.Forecast{
		Location: "Ankara",
		Summaries: []weather.DailySummary{
			{Date: "2022-01-01", DisplayDate: "01-01", AverageTemperature: 12, HighTemperature: 14, LowTemperature: 10},
			{Date: "2022-01-02", DisplayDate: "02-01", AverageTemperature: 21.004, HighTemperature: 22, LowTemperature: 20},
		},
		SkipCount: skip,
	}
}

func renderDoc(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestNewForecastViewSkipsInProgressDay(t *testing.T) {
	v := NewForecastView(sampleForecast(1))

	assert.Equal(t, "Next 1 Day Forecast", v.Title)
	require.Len(t, v.Days, 1)
	assert.Equal(t, "02-01", v.Days[0].DisplayDate)
	assert.Equal(t, "22.00 °C", v.Days[0].High)
	assert.Equal(t, "20.00 °C", v.Days[0].Low)
}

func TestNewForecastViewWithoutSkip(t *testing.T) {
	v := NewForecastView(sampleForecast(0))

	assert.Equal(t, "Next 2 Day Forecast", v.Title)
	require.Len(t, v.Days, 2)
	assert.Equal(t, "12.00 °C", v.Days[0].Average)
}

func TestNewForecastViewEmpty(t *testing.T) {
	v := NewForecastView(weather.Forecast{})

	assert.Equal(t, "Next 0 Day Forecast", v.Title)
	assert.Empty(t, v.Days)
}

func TestNewCurrentView(t *testing.T) {
	c := weather.CurrentConditions{
		Location:     "Oslo",
		Coordinates:  weather.Coordinates{Lat: 59.9, Lon: 10.75},
		TemperatureC: 20.456,
		HumidityPct:  50,
		Description:  "clear sky",
		Sunrise:      time.Date(2022, 6, 1, 2, 54, 0, 0, time.UTC),
		Sunset:       time.Date(2022, 6, 1, 20, 31, 59, 0, time.UTC),
	}

	v := NewCurrentView(c)

	assert.Equal(t, "20.46", v.Temperature)
	assert.Equal(t, "50", v.Humidity)
	assert.Equal(t, "02:54", v.Sunrise)
	assert.Equal(t, "20:31", v.Sunset)
	assert.Equal(t,
		"https://www.openstreetmap.org/export/embed.html?bbox=10.742000%2C59.895000%2C10.758000%2C59.905000&layer=mapnik",
		v.MapURL)
}

func TestNewCurrentViewMissingSunTimes(t *testing.T) {
	v := NewCurrentView(weather.CurrentConditions{})
	assert.Equal(t, "--:--", v.Sunrise)
	assert.Equal(t, "--:--", v.Sunset)
}

func TestRenderFullPage(t *testing.T) {
	cur := NewCurrentView(weather.CurrentConditions{Location: "Ankara", TemperatureC: 5, Description: "snow"})
	fc := NewForecastView(sampleForecast(1))

	doc := renderDoc(t, Page{Query: "Ankara", Current: &cur, Forecast: &fc})

	assert.Equal(t, "", strings.TrimSpace(doc.Find("#errorMessage").Text()))
	assert.Equal(t, "5.00", doc.Find("#temperature").Text())
	assert.Equal(t, "snow", doc.Find("#weatherDescription").Text())
	assert.Equal(t, "Next 1 Day Forecast", doc.Find("#forecastTitle h2").Text())
	assert.Equal(t, 1, doc.Find(".forecastDay").Length())
	assert.Equal(t, "Date: 02-01", doc.Find(".forecastDay .date").Text())
	assert.Equal(t, "21.00 °C", doc.Find(".forecastDay .average").Text())
	val, _ := doc.Find("#locationInput").Attr("value")
	assert.Equal(t, "Ankara", val)
}

func TestRenderErrorPageHidesPanels(t *testing.T) {
	cur := NewCurrentView(weather.CurrentConditions{})
	fc := NewForecastView(sampleForecast(0))
	p := ErrorPage("nowhere")
	p.Current = &cur
	p.Forecast = &fc

	doc := renderDoc(t, p)

	assert.Equal(t, InvalidLocationMessage, doc.Find("#errorMessage").Text())
	assert.Equal(t, 0, doc.Find("#weatherInfo").Length())
	assert.Equal(t, 0, doc.Find(".forecastDay").Length())
}

func TestRenderEscapesQuery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Page{Query: `"><script>alert(1)</script>`}))
	assert.NotContains(t, buf.String(), "<script>")
}

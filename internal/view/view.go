// Package view turns weather results into display-ready structs and HTML.
// Everything here is a pure function of its inputs.
package view

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-viewer/internal/weather"
)

// InvalidLocationMessage is the only failure text shown to users.
const InvalidLocationMessage = "Please enter a valid location."

const clockLayout = "15:04"

// CurrentView is the render input for the current-weather panel.
type CurrentView struct {
	Location    string
	Temperature string
	Humidity    string
	Description string
	Sunrise     string
	Sunset      string
	MapURL      string
}

// ForecastDayView is one rendered forecast day.
type ForecastDayView struct {
	DisplayDate string
	Average     string
	High        string
	Low         string
}

// ForecastView is the render input for the forecast panel.
type ForecastView struct {
	Title string
	Days  []ForecastDayView
}

// Page is everything the HTML page needs. A non-empty Error suppresses the
// weather panels.
type Page struct {
	Query    string
	Error    string
	Current  *CurrentView
	Forecast *ForecastView
}

// NewCurrentView formats current conditions. Times are shown in UTC.
func NewCurrentView(c weather.CurrentConditions) CurrentView {
	return CurrentView{
		Location:    c.Location,
		Temperature: fmt.Sprintf("%.2f", c.TemperatureC),
		Humidity:    fmt.Sprintf("%.0f", c.HumidityPct),
		Description: c.Description,
		Sunrise:     formatClock(c.Sunrise),
		Sunset:      formatClock(c.Sunset),
		MapURL:      MapEmbedURL(c.Coordinates),
	}
}

// NewForecastView formats the days after the skipped in-progress day.
func NewForecastView(f weather.Forecast) ForecastView {
	upcoming := f.Upcoming()
	days := make([]ForecastDayView, 0, len(upcoming))
	for _, d := range upcoming {
		days = append(days, ForecastDayView{
			DisplayDate: d.DisplayDate,
			Average:     formatTemperature(d.AverageTemperature),
			High:        formatTemperature(d.HighTemperature),
			Low:         formatTemperature(d.LowTemperature),
		})
	}
	return ForecastView{
		Title: fmt.Sprintf("Next %d Day Forecast", f.Days()),
		Days:  days,
	}
}

// ErrorPage is the page shown for any lookup failure.
func ErrorPage(query string) Page {
	return Page{Query: query, Error: InvalidLocationMessage}
}

// MapEmbedURL returns an OpenStreetMap embed URL framing c.
func MapEmbedURL(c weather.Coordinates) string {
	return fmt.Sprintf(
		"https://www.openstreetmap.org/export/embed.html?bbox=%.6f%%2C%.6f%%2C%.6f%%2C%.6f&layer=mapnik",
		c.Lon-0.008, c.Lat-0.005, c.Lon+0.008, c.Lat+0.005,
	)
}

func formatTemperature(t float64) string {
	return fmt.Sprintf("%.2f °C", t)
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.UTC().Format(clockLayout)
}

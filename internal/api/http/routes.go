package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/scheduler"
	"github.com/i474232898/weather-viewer/internal/view"
	"github.com/i474232898/weather-viewer/internal/weather"
)

const lookupTimeout = 15 * time.Second

var validate = validator.New()

var errLatLonPair = errors.New("lat and lon must be given together")

// WeatherService is what the handlers need from weather.Service.
type WeatherService interface {
	GetCurrent(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error)
	GetForecast(ctx context.Context, loc weather.Location) (weather.Forecast, error)
	ProviderName() string
}

// StatusReporter exposes the latest provider probe.
type StatusReporter interface {
	Status() *scheduler.ProbeStatus
}

type handlers struct {
	service WeatherService
	status  StatusReporter
	log     logger.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. status may be nil.
func RegisterRoutes(app *fiber.App, service WeatherService, status StatusReporter, log logger.Logger) {
	h := &handlers{service: service, status: status, log: log.WithField("component", "http")}

	app.Get("/health", h.health)
	app.Get("/", h.index)
	app.Get("/weather", h.page)

	v1 := app.Group("/api/v1")
	v1.Get("/weather/current", h.current)
	v1.Get("/weather/forecast", h.forecast)
}

func (h *handlers) health(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":   "ok",
		"service":  "weather-viewer",
		"provider": h.service.ProviderName(),
	}
	if h.status != nil {
		if st := h.status.Status(); st != nil {
			resp["probe"] = st
			if !st.Healthy {
				resp["status"] = "degraded"
			}
		}
	}
	return c.JSON(resp)
}

func (h *handlers) index(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, view.Page{})
}

// page renders current weather and forecast together. Any failure shows the
// single invalid-location message and nothing else.
func (h *handlers) page(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return renderPage(c, fiber.StatusBadRequest, view.ErrorPage(q.Location))
	}
	loc := q.toLocation()

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	var (
		current  weather.CurrentConditions
		forecast weather.Forecast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = h.service.GetCurrent(gctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = h.service.GetForecast(gctx, loc)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Warnf("lookup for %s failed: %v", loc.Key(), err)
		return renderPage(c, statusFor(err), view.ErrorPage(q.Location))
	}

	cv := view.NewCurrentView(current)
	fv := view.NewForecastView(forecast)
	return renderPage(c, fiber.StatusOK, view.Page{Query: q.Location, Current: &cv, Forecast: &fv})
}

func (h *handlers) current(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, view.InvalidLocationMessage)
	}
	loc := q.toLocation()

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	current, err := h.service.GetCurrent(ctx, loc)
	if err != nil {
		return fiber.NewError(statusFor(err), view.InvalidLocationMessage)
	}
	return c.JSON(current)
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, view.InvalidLocationMessage)
	}
	loc := q.toLocation()

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	forecast, err := h.service.GetForecast(ctx, loc)
	if err != nil {
		return fiber.NewError(statusFor(err), view.InvalidLocationMessage)
	}

	return c.JSON(fiber.Map{
		"location":  forecast.Location,
		"title":     view.NewForecastView(forecast).Title,
		"skipCount": forecast.SkipCount,
		"summaries": forecast.Summaries,
		"upcoming":  forecast.Upcoming(),
	})
}

// statusFor maps a lookup error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrInvalidLocation):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

func renderPage(c *fiber.Ctx, status int, p view.Page) error {
	var buf bytes.Buffer
	if err := view.Render(&buf, p); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Location string `validate:"max=200"`
	Lat      string `validate:"omitempty,latitude"`
	Lon      string `validate:"omitempty,longitude"`
}

func (l locationQuery) toLocation() weather.Location {
	if l.Lat != "" && l.Lon != "" {
		// Validated as numeric by parseLocationQuery.
		lat, _ := strconv.ParseFloat(l.Lat, 64)
		lon, _ := strconv.ParseFloat(l.Lon, 64)
		return weather.CoordinateLocation(lat, lon)
	}
	return weather.NamedLocation(l.Location)
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{
		Location: strings.TrimSpace(c.Query("location")),
		Lat:      strings.TrimSpace(c.Query("lat")),
		Lon:      strings.TrimSpace(c.Query("lon")),
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	if (q.Lat == "") != (q.Lon == "") {
		return q, errLatLonPair
	}
	if err := q.toLocation().Validate(); err != nil {
		return q, err
	}
	return q, nil
}

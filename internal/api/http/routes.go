package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/park-forecast-planner/internal/parks"
	"github.com/i474232898/park-forecast-planner/internal/recommend"
	"github.com/i474232898/park-forecast-planner/internal/resilience"
	"github.com/i474232898/park-forecast-planner/internal/weather"
)

// defaultDays is used when a request does not say how far ahead to look.
const defaultDays = 7

var validate = validator.New()

// RecommendationObserver counts ranking runs.
type RecommendationObserver interface {
	ObserveRecommendation(degraded bool)
}

// Deps are the services the HTTP handlers need.
type Deps struct {
	Weather  *weather.Service
	Images   *parks.ImageService
	Parks    []parks.Park
	Observer RecommendationObserver
	Logger   *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Parks == nil {
		d.Parks = parks.Catalog
	}
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")
	v1.Get("/parks", h.listParks)
	v1.Get("/parks/images", h.parkImages)
	v1.Get("/weather/current", h.currentWeather)
	v1.Get("/weather/forecast", h.forecast)
	v1.Get("/recommendations", h.recommendations)
}

type handlers struct {
	Deps
}

type parkView struct {
	parks.Park
	Climate parks.Climate `json:"climate"`
}

func (h *handlers) listParks(c *fiber.Ctx) error {
	out := make([]parkView, 0, len(h.Parks))
	for _, p := range h.Parks {
		out = append(out, parkView{Park: p, Climate: parks.Classify(p.Name)})
	}
	return c.JSON(fiber.Map{"parks": out})
}

func (h *handlers) parkImages(c *fiber.Ctx) error {
	var q parkQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	p, ok := h.findPark(q.Park)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown park: "+q.Park)
	}
	return c.JSON(h.Images.Images(c.UserContext(), p))
}

func (h *handlers) currentWeather(c *fiber.Ctx) error {
	var q coordQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	at, err := q.coordinates()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := h.Weather.Current(c.UserContext(), at)
	return c.JSON(fiber.Map{
		"source":    h.Weather.SourceName(),
		"location":  at,
		"current":   res.Value,
		"degraded":  res.Degraded,
		"reason":    res.Reason,
		"simulated": res.Value.Simulated,
	})
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	q := forecastQuery{Days: defaultDays}
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	at, err := q.coordinates()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Weather.Forecast(c.UserContext(), at, q.Days)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{
		"source":    h.Weather.SourceName(),
		"location":  at,
		"days":      res.Days,
		"degraded":  res.Degraded,
		"reason":    res.Reason,
		"simulated": res.Simulated,
	})
}

func (h *handlers) recommendations(c *fiber.Ctx) error {
	q := recommendQuery{Days: defaultDays}
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	at, err := h.resolveLocation(ctx, q)
	if err != nil {
		return err
	}

	resp := recommendResponse{Location: at, Days: q.Days}
	if q.PerPark {
		resp.Mode = "per_park"
		err = h.rankPerPark(ctx, &resp)
	} else {
		resp.Mode = "shared"
		err = h.rankShared(ctx, at, &resp)
	}
	if err != nil {
		return mapServiceError(err)
	}

	if h.Observer != nil {
		h.Observer.ObserveRecommendation(resp.Degraded)
	}
	h.Logger.Debug("recommendations ranked",
		zap.String("mode", resp.Mode),
		zap.Int("parks", len(resp.Recommendations)),
		zap.Bool("degraded", resp.Degraded),
	)
	return c.JSON(resp)
}

type recommendResponse struct {
	Location        weather.Coordinates    `json:"location"`
	Days            int                    `json:"days"`
	Mode            string                 `json:"mode"`
	Degraded        bool                   `json:"degraded"`
	Reason          resilience.Reason      `json:"reason,omitempty"`
	Simulated       bool                   `json:"simulated"`
	Forecast        []weather.DailySummary `json:"forecast,omitempty"`
	Recommendations []recommend.Entry      `json:"recommendations"`
}

func (h *handlers) rankShared(ctx context.Context, at weather.Coordinates, resp *recommendResponse) error {
	res, err := h.Weather.Forecast(ctx, at, resp.Days)
	if err != nil {
		return err
	}
	resp.Forecast = res.Days
	resp.Degraded = res.Degraded
	resp.Reason = res.Reason
	resp.Simulated = res.Simulated
	resp.Recommendations = recommend.RankShared(h.Parks, res.Days)
	return nil
}

// rankPerPark fetches each park's own forecast one after another. Parallel
// fetches would burn through the upstream quota in a single request.
func (h *handlers) rankPerPark(ctx context.Context, resp *recommendResponse) error {
	byPark := make(map[string][]weather.DailySummary, len(h.Parks))
	for _, p := range h.Parks {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := h.Weather.Forecast(ctx, p.Coordinates(), resp.Days)
		if err != nil {
			return err
		}
		byPark[p.Name] = res.Days
		if res.Degraded && !resp.Degraded {
			resp.Degraded = true
			resp.Reason = res.Reason
		}
		resp.Simulated = resp.Simulated || res.Simulated
	}
	resp.Recommendations = recommend.Rank(h.Parks, byPark)
	return nil
}

func (h *handlers) resolveLocation(ctx context.Context, q recommendQuery) (weather.Coordinates, error) {
	if q.Lat != "" || q.Lon != "" {
		cq := coordQuery{Lat: q.Lat, Lon: q.Lon}
		if err := validate.Struct(cq); err != nil {
			return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		at, err := cq.coordinates()
		if err != nil {
			return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return at, nil
	}

	pq := placeQuery{City: q.City, Country: q.Country}
	if err := validate.Struct(pq); err != nil {
		return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, "either lat/lon or city/country is required")
	}
	at, err := h.Weather.Locate(ctx, pq.City, pq.Country)
	if err != nil {
		return weather.Coordinates{}, mapServiceError(err)
	}
	return at, nil
}

func (h *handlers) findPark(q string) (parks.Park, bool) {
	for _, p := range h.Parks {
		if p.Name == q || p.Code == q {
			return p, true
		}
	}
	return parks.Find(q)
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, weather.ErrMalformedSample):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrInvalidDays), errors.Is(err, weather.ErrGeocodingUnavailable):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// bindQuery parses and validates query parameters into dst.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// coordQuery holds query parameters for identifying a location by coordinates.
type coordQuery struct {
	Lat string `query:"lat" validate:"required,latitude"`
	Lon string `query:"lon" validate:"required,longitude"`
}

func (q coordQuery) coordinates() (weather.Coordinates, error) {
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return weather.Coordinates{}, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return weather.Coordinates{}, err
	}
	return weather.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// placeQuery holds query parameters for identifying a location by name.
type placeQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

type forecastQuery struct {
	Lat  string `query:"lat" validate:"required,latitude"`
	Lon  string `query:"lon" validate:"required,longitude"`
	Days int    `query:"days" validate:"min=1,max=7"`
}

func (q forecastQuery) coordinates() (weather.Coordinates, error) {
	return coordQuery{Lat: q.Lat, Lon: q.Lon}.coordinates()
}

type parkQuery struct {
	Park string `query:"park" validate:"required"`
}

type recommendQuery struct {
	Lat     string `query:"lat"`
	Lon     string `query:"lon"`
	City    string `query:"city"`
	Country string `query:"country"`
	Days    int    `query:"days" validate:"min=1,max=7"`
	PerPark bool   `query:"per_park"`
}

package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/solar-day-service/internal/solarday"
)

var validate = validator.New()

// RegisterRoutes wires the solar day HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *solarday.Service) {
	days := app.Group("/api/v1/days")

	days.Post("/", func(c *fiber.Ctx) error {
		var req createSolarDayRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		}

		sd, err := service.Upsert(c.Context(), date, req.Weather, toValueRequests(req.Values))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store solar day")
		}
		return c.JSON(toResponse(sd))
	})

	days.Post("/values", func(c *fiber.Ctx) error {
		var reqs []timeValueRequest
		if err := c.BodyParser(&reqs); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		for _, r := range reqs {
			if err := validate.Struct(r); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		result, err := service.InsertValues(c.Context(), toValueRequests(reqs))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store solar day values")
		}
		return c.JSON(result)
	})

	// Static routes must register before the :date parameter route.
	days.Get("/dates", func(c *fiber.Ctx) error {
		dates, err := service.Dates(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list dates")
		}

		out := make([]string, 0, len(dates))
		for _, d := range dates {
			out = append(out, d.Format(time.DateOnly))
		}
		return c.JSON(out)
	})

	days.Get("/today", func(c *fiber.Ctx) error {
		sd, err := service.Today(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch solar day")
		}
		return c.JSON(toResponse(sd))
	})

	days.Get("/:date", func(c *fiber.Ctx) error {
		date, err := parseDateParam(c)
		if err != nil {
			return err
		}

		sd, err := service.ByDate(c.Context(), date)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch solar day")
		}
		return c.JSON(toResponse(sd))
	})

	days.Post("/:date", func(c *fiber.Ctx) error {
		date, err := parseDateParam(c)
		if err != nil {
			return err
		}

		sd, err := service.RefreshTimes(c.Context(), date)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to refresh solar times")
		}
		return c.JSON(toResponse(sd))
	})
}

// timeValueRequest is a single incoming (kind, timestamp) pair. In the batch
// endpoint the timestamp also drives the grouping date.
type timeValueRequest struct {
	Kind      string    `json:"kind" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// createSolarDayRequest is the body of POST /.
type createSolarDayRequest struct {
	Date    string             `json:"date" validate:"required,datetime=2006-01-02"`
	Weather string             `json:"weather"`
	Values  []timeValueRequest `json:"values" validate:"dive"`
}

// solarDayResponse is the wire shape of a solar day record.
type solarDayResponse struct {
	Date    string               `json:"date"`
	Weather string               `json:"weather,omitempty"`
	Values  map[string]time.Time `json:"values"`
}

func toValueRequests(in []timeValueRequest) []solarday.ValueRequest {
	out := make([]solarday.ValueRequest, 0, len(in))
	for _, r := range in {
		out = append(out, solarday.ValueRequest{Kind: r.Kind, Timestamp: r.Timestamp})
	}
	return out
}

func toResponse(sd *solarday.SolarDay) solarDayResponse {
	return solarDayResponse{
		Date:    sd.Date.Format(time.DateOnly),
		Weather: sd.Weather,
		Values:  sd.Values,
	}
}

func parseDateParam(c *fiber.Ctx) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, c.Params("date"))
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
	}
	return date, nil
}

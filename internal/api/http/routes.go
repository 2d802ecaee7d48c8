package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-field/internal/common"
	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/service"
	"github.com/i474232898/weather-field/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. Readings are
// converted to units unless a request overrides them.
func RegisterRoutes(app *fiber.App, svc *service.Service, units weather.Units) {
	v1 := app.Group("/api/v1")

	v1.Get("/regions", func(c *fiber.Ctx) error {
		out := make([]fiber.Map, 0)
		for _, region := range svc.Regions() {
			entry := fiber.Map{"region": region, "built": false}
			if snap, err := svc.Latest(region); err == nil {
				entry["built"] = true
				entry["snapshot"] = snap.Summary()
			}
			out = append(out, entry)
		}
		return c.JSON(out)
	})

	v1.Get("/regions/:region", func(c *fiber.Ctx) error {
		snap, err := svc.Latest(c.Params("region"))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(snap.Summary())
	})

	v1.Get("/regions/:region/history", func(c *fiber.Ctx) error {
		snaps, err := svc.History(c.Params("region"))
		if err != nil {
			return lookupError(err)
		}

		out := make([]service.Summary, len(snaps))
		for i, snap := range snaps {
			out[i] = snap.Summary()
		}
		return c.JSON(out)
	})

	v1.Get("/regions/:region/weather", func(c *fiber.Ctx) error {
		var q pointQuery
		if err := q.bind(c, units); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		tup, snap, err := svc.Evaluate(c.Params("region"), q.Time, *q.Lat, *q.Lon)
		if err != nil {
			return lookupError(err)
		}

		return c.JSON(fiber.Map{
			"region":   snap.Region,
			"snapshot": snap.ID,
			"time":     q.Time,
			"lat":      *q.Lat,
			"lon":      *q.Lon,
			"contains": snap.Field.Grid().Contains(*q.Lat, *q.Lon),
			"reading":  q.Units.Reading(tup),
		})
	})

	v1.Get("/regions/:region/series", func(c *fiber.Ctx) error {
		var q pointQuery
		if err := q.bind(c, units); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, snap, err := svc.Series(c.Params("region"), *q.Lat, *q.Lon)
		if err != nil {
			return lookupError(err)
		}

		points := make([]fiber.Map, len(series))
		for i, p := range series {
			points[i] = fiber.Map{"time": p.Time, "reading": q.Units.Reading(p.Tuple)}
		}
		return c.JSON(fiber.Map{
			"region":   snap.Region,
			"snapshot": snap.ID,
			"lat":      *q.Lat,
			"lon":      *q.Lon,
			"series":   points,
		})
	})

	v1.Get("/regions/:region/latest", func(c *fiber.Ctx) error {
		u, err := parseUnits(c, units)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := svc.Latest(c.Params("region"))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(field.LatestFeatures(snap.Field, u))
	})

	v1.Get("/regions/:region/grid", func(c *fiber.Ctx) error {
		snap, err := svc.Latest(c.Params("region"))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(field.GridFeatures(snap.Field.Grid()))
	})

	v1.Post("/regions/:region/rebuild", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := svc.Rebuild(ctx, c.Params("region"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnknownRegion):
				return lookupError(err)
			case errors.Is(err, field.ErrInvalidDomain):
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap.Summary())
	})
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownRegion):
		return fiber.NewError(fiber.StatusNotFound, "unknown region")
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no weather field built for region yet")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to query weather field")
}

// pointQuery holds query parameters for a point evaluation.
type pointQuery struct {
	Lat   *float64 `validate:"required,gte=-90,lte=90"`
	Lon   *float64 `validate:"required,gte=-180,lte=360"`
	Time  time.Time
	Units weather.Units
}

func (q *pointQuery) bind(c *fiber.Ctx, def weather.Units) error {
	var err error
	if q.Lat, err = parseFloat(c.Query("lat")); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Lon, err = parseFloat(c.Query("lon")); err != nil {
		return errors.New("lon must be a number")
	}

	q.Time = time.Now().UTC()
	if ts := c.Query("time"); ts != "" {
		if q.Time, err = common.ParseTime(ts); err != nil {
			return err
		}
	}

	if q.Units, err = parseUnits(c, def); err != nil {
		return err
	}

	return validate.Struct(q)
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseUnits(c *fiber.Ctx, def weather.Units) (weather.Units, error) {
	u := def
	var err error
	if s := c.Query("temp_unit"); s != "" {
		if u.AirTemp, err = weather.ParseTempUnit(s); err != nil {
			return u, err
		}
	}
	if s := c.Query("speed_unit"); s != "" {
		if u.WindSpeed, err = weather.ParseSpeedUnit(s); err != nil {
			return u, err
		}
	}
	return u, nil
}

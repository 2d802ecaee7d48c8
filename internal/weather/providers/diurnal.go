package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/weather"
)

// DiurnalSource generates a synthetic day-cycle field. Every grid cell carries
// the same values; only time varies.
type DiurnalSource struct {
	name  string
	cycle weather.DiurnalCycle
	grid  field.Grid
	hours int
	order field.Order
	start func() time.Time
	loc   *time.Location // zone of the sunrise/sunset hours
	solar bool
}

// DiurnalOption customises a DiurnalSource.
type DiurnalOption func(*DiurnalSource)

// WithHours sets the number of hourly samples (default 24).
func WithHours(hours int) DiurnalOption {
	return func(s *DiurnalSource) { s.hours = hours }
}

// WithStart fixes the first sample time instead of the current hour.
func WithStart(start time.Time) DiurnalOption {
	return func(s *DiurnalSource) { s.start = func() time.Time { return start } }
}

// WithOrder sets the table layout (default TimeMajor).
func WithOrder(order field.Order) DiurnalOption {
	return func(s *DiurnalSource) { s.order = order }
}

// WithLocation sets the zone in which sunrise and sunset hours are expressed.
func WithLocation(loc *time.Location) DiurnalOption {
	return func(s *DiurnalSource) { s.loc = loc }
}

// WithSolarHours derives sunrise and sunset for each day from the grid centre.
// Days on which the sun does not rise and set keep the cycle's own hours.
func WithSolarHours() DiurnalOption {
	return func(s *DiurnalSource) { s.solar = true }
}

// NewDiurnalSource validates the cycle and returns a source over grid.
func NewDiurnalSource(name string, cycle weather.DiurnalCycle, grid field.Grid, opts ...DiurnalOption) (*DiurnalSource, error) {
	if err := cycle.Validate(); err != nil {
		return nil, err
	}
	if grid == nil {
		return nil, fmt.Errorf("%w: diurnal source needs a grid", field.ErrInvalidDomain)
	}
	s := &DiurnalSource{
		name:  name,
		cycle: cycle,
		grid:  grid,
		hours: 24,
		order: field.TimeMajor,
		start: func() time.Time { return time.Now().UTC().Truncate(time.Hour) },
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *DiurnalSource) Name() string {
	return s.name
}

// Build fills one time slice per hour with the cycle value at that hour.
func (s *DiurnalSource) Build(ctx context.Context) (*field.Field, error) {
	axis, err := field.HourlyAxis(s.start(), s.hours)
	if err != nil {
		return nil, err
	}

	return field.Build(axis, s.grid, s.order, func(b *field.Builder) error {
		slice := make([]weather.Tuple, s.grid.Len())
		for ti := 0; ti < axis.Len(); ti++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			at := axis.At(ti).In(s.loc)
			t := s.cycleOn(at).At(localHour(at))
			for si := range slice {
				slice[si] = t
			}
			if err := b.SetTimeSlice(ti, slice); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DiurnalSource) cycleOn(day time.Time) weather.DiurnalCycle {
	c := s.cycle
	if !s.solar {
		return c
	}
	sw, ne := s.grid.Bounds()
	if rise, set, ok := weather.SunHours(day, (sw.Lat+ne.Lat)/2, (sw.Lon+ne.Lon)/2); ok {
		c.Sunrise, c.Sunset = rise, set
	}
	return c
}

func localHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

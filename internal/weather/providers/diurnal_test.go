package providers

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/weather"
)

func testCycle() weather.DiurnalCycle {
	return weather.DiurnalCycle{
		Sunrise:     6,
		Sunset:      18,
		AirTemps:    weather.Anchors{Sunrise: 10, Noon: 20, Afternoon: 24, Sunset: 16},
		Humidities:  weather.DefaultHumidities(),
		WindSpeeds:  weather.NewSchedule(map[float64]float64{0: 3}),
		WindDirs:    weather.NewSchedule(map[float64]float64{0: 225}),
		CloudCovers: weather.NewSchedule(map[float64]float64{0: 20}),
	}
}

func TestDiurnalSourceBuild(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	grid, _ := field.NewRegularGrid(34, -120, 35, -119, 3, 3)

	src, err := NewDiurnalSource("diurnal", testCycle(), grid, WithStart(start))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := src.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.Axis().Len() != 24 || f.Len() != 24*9 || f.Order() != field.TimeMajor {
		t.Fatalf("unexpected shape: %d times, %d cells, %s", f.Axis().Len(), f.Len(), f.Order())
	}

	noon := f.Evaluate(start.Add(12*time.Hour), 34.3, -119.2)
	if v, _ := noon.AirTemp.Float(); math.Abs(v-20) > 1e-9 {
		t.Fatalf("noon air temp = %v, want 20", v)
	}
	if v, _ := noon.WindDir.Float(); math.Abs(v-225) > 1e-9 {
		t.Fatalf("noon wind dir = %v, want 225", v)
	}

	// 13:30 lies between samples; the field interpolates the hourly values
	got, _ := f.Evaluate(start.Add(13*time.Hour+30*time.Minute), 34, -120).AirTemp.Float()
	if math.Abs(got-23) > 1e-9 {
		t.Fatalf("13:30 air temp = %v, want 23", got)
	}

	if !f.Evaluate(start.Add(24*time.Hour), 34, -120).IsMissing() {
		t.Fatalf("expected missing after the last hour")
	}
}

func TestDiurnalSourceLocation(t *testing.T) {
	zone := time.FixedZone("PDT", -7*3600)
	start := time.Date(2024, 7, 1, 13, 0, 0, 0, time.UTC) // 06:00 local
	grid, _ := field.PointGrid(34, -119)

	src, err := NewDiurnalSource("diurnal", testCycle(), grid, WithStart(start), WithHours(2), WithLocation(zone))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := src.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if v, _ := f.At(0, 0).AirTemp.Float(); math.Abs(v-10) > 1e-9 {
		t.Fatalf("local sunrise air temp = %v, want 10", v)
	}
}

func TestDiurnalSourceInvalid(t *testing.T) {
	grid, _ := field.PointGrid(34, -119)

	bad := testCycle()
	bad.Sunrise = 15
	if _, err := NewDiurnalSource("diurnal", bad, grid); !errors.Is(err, weather.ErrInvalidCycle) {
		t.Fatalf("expected ErrInvalidCycle, got %v", err)
	}

	src, _ := NewDiurnalSource("diurnal", testCycle(), grid, WithHours(0))
	if _, err := src.Build(context.Background()); !errors.Is(err, field.ErrInvalidDomain) {
		t.Fatalf("expected ErrInvalidDomain for zero hours, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src, _ = NewDiurnalSource("diurnal", testCycle(), grid)
	if _, err := src.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiurnalSourceOrder(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	grid, _ := field.NewRegularGrid(34, -120, 35, -119, 2, 2)

	var results []weather.Tuple
	for _, order := range []field.Order{field.TimeMajor, field.SpaceMajor} {
		src, err := NewDiurnalSource("diurnal", testCycle(), grid, WithStart(start), WithOrder(order))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		f, err := src.Build(context.Background())
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if f.Order() != order {
			t.Fatalf("order = %s, want %s", f.Order(), order)
		}
		results = append(results, f.At(9, 3))
	}
	if results[0] != results[1] {
		t.Fatalf("layouts disagree: %v vs %v", results[0], results[1])
	}
}

func TestDiurnalSourceSolarHours(t *testing.T) {
	// on the equator at the prime meridian the sun rises at 06:00 and sets at 18:00
	start := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	grid, _ := field.PointGrid(0, 0)

	cycle := testCycle()
	cycle.Sunrise, cycle.Sunset = 8, 16

	fixed, _ := NewDiurnalSource("diurnal", cycle, grid, WithStart(start))
	solar, _ := NewDiurnalSource("diurnal", cycle, grid, WithStart(start), WithSolarHours())

	ff, err := fixed.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sf, err := solar.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if v, _ := ff.At(8, 0).AirTemp.Float(); math.Abs(v-10) > 1e-9 {
		t.Fatalf("configured sunrise air temp = %v, want 10", v)
	}
	if v, _ := sf.At(6, 0).AirTemp.Float(); math.Abs(v-10) > 1e-6 {
		t.Fatalf("solar sunrise air temp = %v, want 10", v)
	}
	if v, _ := sf.At(18, 0).AirTemp.Float(); math.Abs(v-16) > 1e-6 {
		t.Fatalf("solar sunset air temp = %v, want 16", v)
	}
}

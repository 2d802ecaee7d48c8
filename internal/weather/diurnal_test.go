package weather

import (
	"errors"
	"math"
	"testing"
)

func testCycle() DiurnalCycle {
	return DiurnalCycle{
		Sunrise:     6,
		Sunset:      18,
		AirTemps:    Anchors{Sunrise: 10, Noon: 20, Afternoon: 24, Sunset: 16},
		Humidities:  DefaultHumidities(),
		WindSpeeds:  NewSchedule(map[float64]float64{6: 2, 14: 5}),
		WindDirs:    NewSchedule(map[float64]float64{0: 90, 12: 270}),
		CloudCovers: nil,
	}
}

func TestDiurnalAnchors(t *testing.T) {
	c := testCycle()
	tests := []struct {
		hour float64
		want float64
	}{
		{6, 10},
		{12, 20},
		{13, 22},
		{14, 24},
		{18, 16},
		{30, 10}, // wraps to 06:00
	}
	for _, tt := range tests {
		got, ok := c.At(tt.hour).AirTemp.Float()
		if !ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("At(%v) air temp = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestDiurnalCurvesAreBounded(t *testing.T) {
	c := testCycle()
	for h := 0.0; h < 24; h += 0.25 {
		f, ok := c.At(h).AirTemp.Float()
		if !ok {
			t.Fatalf("air temp missing at %v", h)
		}
		if f < 10-1e-9 || f > 24+1e-9 {
			t.Fatalf("air temp %v at %v outside anchor range", f, h)
		}
	}

	// overnight temperature falls from the sunset value toward the sunrise value
	midnight, _ := c.At(0).AirTemp.Float()
	late, _ := c.At(20).AirTemp.Float()
	if !(midnight < late && late < 16) {
		t.Fatalf("expected cooling overnight: 20:00=%v 00:00=%v", late, midnight)
	}
}

func TestScheduleAt(t *testing.T) {
	s := NewSchedule(map[float64]float64{6: 2, 14: 5})
	tests := []struct {
		hour float64
		want float64
	}{
		{0, 0},
		{3, 0}, // nothing scheduled yet
		{6, 2},
		{13.9, 2},
		{14, 5},
		{23, 5},
	}
	for _, tt := range tests {
		got, ok := s.At(tt.hour).Float()
		if !ok || got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.hour, got, tt.want)
		}
	}

	if got, ok := Schedule(nil).At(10).Float(); !ok || got != 0 {
		t.Fatalf("empty schedule = %v, want 0", got)
	}
	if got, ok := testCycle().At(10).CloudCover.Float(); !ok || got != 0 {
		t.Fatalf("cloud cover without a schedule = %v, want 0", got)
	}
	if got, _ := testCycle().At(5).WindSpeed.Float(); got != 0 {
		t.Fatalf("wind before the first entry = %v, want 0", got)
	}
}

func TestDiurnalValidate(t *testing.T) {
	if err := testCycle().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []func(c *DiurnalCycle){
		func(c *DiurnalCycle) { c.Sunrise = 13 },
		func(c *DiurnalCycle) { c.Sunset = 13 },
		func(c *DiurnalCycle) { c.Humidities.Noon = 120 },
		func(c *DiurnalCycle) { c.WindSpeeds = NewSchedule(map[float64]float64{1: -1}) },
		func(c *DiurnalCycle) { c.CloudCovers = NewSchedule(map[float64]float64{1: 101}) },
	}
	for i, mutate := range bad {
		c := testCycle()
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalidCycle) {
			t.Errorf("case %d: expected ErrInvalidCycle, got %v", i, err)
		}
	}
}

func TestDefaultAirTemps(t *testing.T) {
	a := DefaultAirTemps()
	if math.Abs(ConvertTemp(a.Afternoon, Celsius, Fahrenheit)-82) > 1e-9 {
		t.Fatalf("afternoon default = %v C, want 82 F", a.Afternoon)
	}
}

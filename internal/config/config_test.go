package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-field/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"REBUILD_INTERVAL", "STORE_MAX_HISTORY", "REGIONS_FILE", "DISPLAY_AIR_TEMP_UNIT", "DISPLAY_WIND_SPEED_UNIT", "PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RebuildInterval != time.Hour || cfg.StoreMaxHistory != 24 || cfg.RegionsFile != "regions.yaml" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Units != weather.DefaultUnits() {
		t.Fatalf("unexpected units %+v", cfg.Units)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REBUILD_INTERVAL", "15m")
	t.Setenv("DISPLAY_AIR_TEMP_UNIT", "C")
	t.Setenv("DISPLAY_WIND_SPEED_UNIT", "kts")
	t.Setenv("SOURCE_RATE_LIMIT", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RebuildInterval != 15*time.Minute || cfg.SourceRateLimit != 0.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Units.AirTemp != weather.Celsius || cfg.Units.WindSpeed != weather.Knots {
		t.Fatalf("unexpected units %+v", cfg.Units)
	}

	t.Setenv("DISPLAY_WIND_SPEED_UNIT", "furlongs")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown speed unit")
	}
}

const regionsYAML = `
regions:
  - name: santa-barbara
    kind: diurnal
    timezone: America/Los_Angeles
    hours: 48
    grid: {min_lat: 34.0, min_lon: -120.0, max_lat: 35.0, max_lon: -119.0, rows: 5, cols: 5}
    diurnal:
      sunrise: "06:00"
      sunset: "20:00"
      air_temp_unit: C
      air_temps: {sunrise: 10, noon: 20, afternoon: 24, sunset: 16}
      wind_speed_unit: kph
      wind_speeds: {"06:00": 3.6, "14:00": 36}
      wind_dirs: {"00:00": 270}
  - name: ridge
    kind: forecast
    forecast_file: forecast.json
`

func TestParseRegions(t *testing.T) {
	regions, err := ParseRegions([]byte(regionsYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	sb := regions[0]
	grid, err := sb.BuildGrid()
	if err != nil || grid.Len() != 25 {
		t.Fatalf("grid: %v", err)
	}
	if loc, err := sb.Location(); err != nil || loc.String() != "America/Los_Angeles" {
		t.Fatalf("location: %v %v", loc, err)
	}

	cycle, err := sb.Cycle()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if sb.SolarHours() {
		t.Fatalf("configured sunrise and sunset should disable solar hours")
	}
	if cycle.Sunset != 20 || cycle.AirTemps.Noon != 20 {
		t.Fatalf("unexpected cycle %+v", cycle)
	}
	if v, _ := cycle.WindSpeeds.At(15).Float(); math.Abs(v-10) > 1e-9 {
		t.Fatalf("wind speed = %v m/s, want 10", v)
	}
	if v, ok := cycle.At(12).CloudCover.Float(); !ok || v != 0 {
		t.Fatalf("cloud cover without a schedule = %v, want 0", v)
	}

	if regions[1].ForecastFile != "forecast.json" {
		t.Fatalf("unexpected forecast region %+v", regions[1])
	}
}

func TestParseRegionsDefaults(t *testing.T) {
	regions, err := ParseRegions([]byte(`
regions:
  - name: point
    kind: diurnal
    grid: {min_lat: 34.2, min_lon: -118.1, max_lat: 34.2, max_lon: -118.1, rows: 1, cols: 1}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cycle, err := regions[0].Cycle()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if f := weather.ConvertTemp(cycle.AirTemps.Sunrise, weather.Celsius, weather.Fahrenheit); math.Abs(f-65) > 1e-9 {
		t.Fatalf("default sunrise temp = %v F, want 65", f)
	}
	if cycle.Humidities != weather.DefaultHumidities() {
		t.Fatalf("unexpected humidities %+v", cycle.Humidities)
	}
	if !regions[0].SolarHours() || cycle.Sunrise != 6 || cycle.Sunset != 18 {
		t.Fatalf("expected solar hours with a 06:00-18:00 fallback, got %v..%v", cycle.Sunrise, cycle.Sunset)
	}
}

func TestParseRegionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "regions: []"},
		{"bad kind", "regions:\n  - {name: a, kind: radar}"},
		{"diurnal without grid", "regions:\n  - {name: a, kind: diurnal}"},
		{"forecast without file", "regions:\n  - {name: a, kind: forecast}"},
		{"inverted grid", "regions:\n  - {name: a, kind: diurnal, grid: {min_lat: 35, min_lon: 0, max_lat: 34, max_lon: 1, rows: 2, cols: 2}}"},
		{"duplicate", "regions:\n  - {name: a, kind: forecast, forecast_file: x}\n  - {name: a, kind: forecast, forecast_file: y}"},
		{"negative wind", "regions:\n  - {name: a, kind: diurnal, grid: {rows: 1, cols: 1}, diurnal: {wind_speeds: {\"01:00\": -1}}}"},
		{"not yaml", "regions: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRegions([]byte(tt.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadRegionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	if err := os.WriteFile(path, []byte(regionsYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRegions(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := LoadRegions(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read regions file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestCycleRejectsBadClock(t *testing.T) {
	r := RegionConfig{Name: "a", Diurnal: &DiurnalConfig{Sunrise: "6am"}}
	if _, err := r.Cycle(); err == nil {
		t.Fatalf("expected error for bad sunrise")
	}
}

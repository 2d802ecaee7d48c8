package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-field/internal/common"
	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/weather"
)

var validate = validator.New()

const (
	KindDiurnal  = "diurnal"
	KindForecast = "forecast"
)

// RegionsFile is the top level of the regions YAML document.
type RegionsFile struct {
	Regions []RegionConfig `yaml:"regions" validate:"required,min=1,dive"`
}

// RegionConfig describes one served region and the source of its field.
type RegionConfig struct {
	Name     string `yaml:"name" validate:"required,hostname_rfc1123"`
	Kind     string `yaml:"kind" validate:"required,oneof=diurnal forecast"`
	Timezone string `yaml:"timezone" validate:"omitempty,timezone"`

	// diurnal
	Grid    *GridConfig    `yaml:"grid" validate:"required_if=Kind diurnal"`
	Start   string         `yaml:"start"`
	Hours   int            `yaml:"hours" validate:"omitempty,gte=1,lte=240"`
	Order   string         `yaml:"order" validate:"omitempty,oneof=time_major space_major"`
	Diurnal *DiurnalConfig `yaml:"diurnal"`

	// forecast
	ForecastFile string `yaml:"forecast_file" validate:"required_if=Kind forecast"`
}

// GridConfig is a regular grid definition.
type GridConfig struct {
	MinLat float64 `yaml:"min_lat" validate:"gte=-90,lte=90"`
	MinLon float64 `yaml:"min_lon" validate:"gte=-180,lte=360"`
	MaxLat float64 `yaml:"max_lat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MaxLon float64 `yaml:"max_lon" validate:"gte=-180,lte=360,gtefield=MinLon"`
	Rows   int     `yaml:"rows" validate:"gte=1"`
	Cols   int     `yaml:"cols" validate:"gte=1"`
}

// DiurnalConfig configures the synthetic day cycle. Omitted anchors fall back
// to the defaults (65/80/82/75 F and 60/25/20/40 %).
type DiurnalConfig struct {
	Sunrise       string             `yaml:"sunrise"`
	Sunset        string             `yaml:"sunset"`
	AirTempUnit   string             `yaml:"air_temp_unit" validate:"omitempty,oneof=C F K"`
	AirTemps      *weather.Anchors   `yaml:"air_temps"`
	Humidities    *weather.Anchors   `yaml:"humidities"`
	WindSpeedUnit string             `yaml:"wind_speed_unit" validate:"omitempty,oneof=mps mph kph kts"`
	WindSpeeds    map[string]float64 `yaml:"wind_speeds" validate:"dive,keys,required,endkeys,gte=0"`
	WindDirs      map[string]float64 `yaml:"wind_dirs" validate:"dive,keys,required,endkeys,gte=0,lte=360"`
	CloudCovers   map[string]float64 `yaml:"cloud_covers" validate:"dive,keys,required,endkeys,gte=0,lte=100"`
}

// LoadRegions reads and validates a regions YAML file.
func LoadRegions(path string) ([]RegionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	return ParseRegions(data)
}

// ParseRegions decodes and validates a regions YAML document.
func ParseRegions(data []byte) ([]RegionConfig, error) {
	var doc RegionsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid regions: %w", err)
	}

	seen := make(map[string]bool, len(doc.Regions))
	for _, r := range doc.Regions {
		if seen[r.Name] {
			return nil, fmt.Errorf("invalid regions: duplicate region %q", r.Name)
		}
		seen[r.Name] = true
	}
	return doc.Regions, nil
}

// Location returns the region's time zone, UTC when unset.
func (r RegionConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(r.Timezone)
}

// BuildGrid returns the region's regular grid.
func (r RegionConfig) BuildGrid() (*field.RegularGrid, error) {
	if r.Grid == nil {
		return nil, fmt.Errorf("%w: region %s has no grid", field.ErrInvalidDomain, r.Name)
	}
	g := r.Grid
	return field.NewRegularGrid(g.MinLat, g.MinLon, g.MaxLat, g.MaxLon, g.Rows, g.Cols)
}

// StartTime returns the configured first sample time, or zero when unset.
func (r RegionConfig) StartTime() (time.Time, error) {
	if r.Start == "" {
		return time.Time{}, nil
	}
	return common.ParseTime(r.Start)
}

// SolarHours reports whether sunrise and sunset are left to the solar
// calculation. Cycle then carries 06:00 and 18:00 as the fallback hours.
func (r RegionConfig) SolarHours() bool {
	return r.Diurnal == nil || (r.Diurnal.Sunrise == "" && r.Diurnal.Sunset == "")
}

// Cycle converts the diurnal settings to canonical units.
func (r RegionConfig) Cycle() (weather.DiurnalCycle, error) {
	d := r.Diurnal
	if d == nil {
		d = &DiurnalConfig{}
	}

	c := weather.DiurnalCycle{
		Sunrise:    6,
		Sunset:     18,
		AirTemps:   weather.DefaultAirTemps(),
		Humidities: weather.DefaultHumidities(),
	}

	var err error
	if d.Sunrise != "" {
		if c.Sunrise, err = common.ParseClock(d.Sunrise); err != nil {
			return c, fmt.Errorf("region %s sunrise: %w", r.Name, err)
		}
	}
	if d.Sunset != "" {
		if c.Sunset, err = common.ParseClock(d.Sunset); err != nil {
			return c, fmt.Errorf("region %s sunset: %w", r.Name, err)
		}
	}

	tempUnit := weather.Fahrenheit
	if d.AirTempUnit != "" {
		if tempUnit, err = weather.ParseTempUnit(d.AirTempUnit); err != nil {
			return c, err
		}
	}
	if d.AirTemps != nil {
		a := *d.AirTemps
		c.AirTemps = weather.Anchors{
			Sunrise:   weather.ConvertTemp(a.Sunrise, tempUnit, weather.Celsius),
			Noon:      weather.ConvertTemp(a.Noon, tempUnit, weather.Celsius),
			Afternoon: weather.ConvertTemp(a.Afternoon, tempUnit, weather.Celsius),
			Sunset:    weather.ConvertTemp(a.Sunset, tempUnit, weather.Celsius),
		}
	}
	if d.Humidities != nil {
		c.Humidities = *d.Humidities
	}

	speedUnit := weather.MilesPerHour
	if d.WindSpeedUnit != "" {
		if speedUnit, err = weather.ParseSpeedUnit(d.WindSpeedUnit); err != nil {
			return c, err
		}
	}

	if c.WindSpeeds, err = schedule(d.WindSpeeds, func(v float64) float64 {
		return weather.ConvertSpeed(v, speedUnit, weather.MetersPerSecond)
	}); err != nil {
		return c, fmt.Errorf("region %s wind speeds: %w", r.Name, err)
	}
	if c.WindDirs, err = schedule(d.WindDirs, nil); err != nil {
		return c, fmt.Errorf("region %s wind directions: %w", r.Name, err)
	}
	if c.CloudCovers, err = schedule(d.CloudCovers, nil); err != nil {
		return c, fmt.Errorf("region %s cloud covers: %w", r.Name, err)
	}

	return c, c.Validate()
}

func schedule(values map[string]float64, conv func(float64) float64) (weather.Schedule, error) {
	byHour := make(map[float64]float64, len(values))
	for clock, v := range values {
		h, err := common.ParseClock(clock)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			v = conv(v)
		}
		byHour[h] = v
	}
	return weather.NewSchedule(byHour), nil
}

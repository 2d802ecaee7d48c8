package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/i474232898/weather-field/internal/common"
	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/weather"
)

// LocationSeries is the parsed forecast of one location. Value arrays run
// parallel to Times; null entries and absent arrays are missing values.
type LocationSeries struct {
	Name        string     `json:"name"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Times       []string   `json:"times"`
	AirTempC    []*float64 `json:"airTempC,omitempty"`
	RelHumidity []*float64 `json:"relHumidityPct,omitempty"`
	WindSpeedMS []*float64 `json:"windSpeedMs,omitempty"`
	WindDirDeg  []*float64 `json:"windDirDeg,omitempty"`
	CloudCover  []*float64 `json:"cloudCoverPct,omitempty"`
}

// ForecastDocument is the top level of a forecast file.
type ForecastDocument struct {
	Locations []LocationSeries `json:"locations"`
}

// SeriesLoader supplies parsed forecast series.
type SeriesLoader interface {
	Load(ctx context.Context) ([]LocationSeries, error)
}

// FileLoader reads a ForecastDocument from a JSON file.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context) ([]LocationSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read forecast %s: %w", l.Path, err)
	}
	var doc ForecastDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode forecast %s: %v", field.ErrInvalidDomain, l.Path, err)
	}
	return doc.Locations, nil
}

// ForecastSource turns per-location forecast series into a SpaceMajor field
// over a scattered grid. The time axis is the union of every location's times.
type ForecastSource struct {
	name   string
	loader SeriesLoader
}

// NewForecastSource creates a forecast source reading from loader.
func NewForecastSource(name string, loader SeriesLoader) *ForecastSource {
	return &ForecastSource{name: name, loader: loader}
}

func (s *ForecastSource) Name() string {
	return s.name
}

// Build loads the series and assembles the field.
func (s *ForecastSource) Build(ctx context.Context) (*field.Field, error) {
	series, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildForecastField(series)
}

// BuildForecastField assembles a field from parsed series. Length mismatches,
// unparseable timestamps and times repeated within a location are domain
// errors.
func BuildForecastField(series []LocationSeries) (*field.Field, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: forecast has no locations", field.ErrInvalidDomain)
	}

	points := make([]field.LatLon, len(series))
	secs := make([][]float64, len(series))
	union := make(map[float64]struct{})

	for i, ls := range series {
		if err := ls.check(); err != nil {
			return nil, err
		}
		points[i] = field.LatLon{Lat: ls.Lat, Lon: ls.Lon}
		secs[i] = make([]float64, len(ls.Times))
		seen := make(map[float64]struct{}, len(ls.Times))
		for j, raw := range ls.Times {
			ts, err := common.ParseTime(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: location %s time %q: %v", field.ErrInvalidDomain, ls.label(i), raw, err)
			}
			s := float64(ts.Unix())
			if _, dup := seen[s]; dup {
				return nil, fmt.Errorf("%w: location %s repeats time %q", field.ErrInvalidDomain, ls.label(i), raw)
			}
			seen[s] = struct{}{}
			secs[i][j] = s
			union[s] = struct{}{}
		}
	}

	axisSecs := make([]float64, 0, len(union))
	for s := range union {
		axisSecs = append(axisSecs, s)
	}
	sort.Float64s(axisSecs)

	axis, err := field.NewTimeAxisSeconds(axisSecs)
	if err != nil {
		return nil, err
	}
	grid, err := field.NewScatteredGrid(points)
	if err != nil {
		return nil, err
	}

	position := make(map[float64]int, len(axisSecs))
	for i, s := range axisSecs {
		position[s] = i
	}

	return field.Build(axis, grid, field.SpaceMajor, func(b *field.Builder) error {
		for si, ls := range series {
			column := make([]weather.Tuple, axis.Len())
			for j, s := range secs[si] {
				column[position[s]] = ls.tuple(j)
			}
			if err := b.SetLocationSeries(si, column); err != nil {
				return err
			}
		}
		return nil
	})
}

func (ls LocationSeries) check() error {
	n := len(ls.Times)
	for name, vals := range map[string][]*float64{
		"airTempC":       ls.AirTempC,
		"relHumidityPct": ls.RelHumidity,
		"windSpeedMs":    ls.WindSpeedMS,
		"windDirDeg":     ls.WindDirDeg,
		"cloudCoverPct":  ls.CloudCover,
	} {
		if vals != nil && len(vals) != n {
			return fmt.Errorf("%w: location %s has %d %s values for %d times", field.ErrInvalidDomain, ls.Name, len(vals), name, n)
		}
	}
	return nil
}

func (ls LocationSeries) label(i int) string {
	if ls.Name != "" {
		return ls.Name
	}
	return fmt.Sprintf("#%d", i)
}

func (ls LocationSeries) tuple(j int) weather.Tuple {
	return weather.Tuple{
		AirTemp:     valueAt(ls.AirTempC, j),
		RelHumidity: valueAt(ls.RelHumidity, j),
		WindSpeed:   valueAt(ls.WindSpeedMS, j),
		WindDir:     valueAt(ls.WindDirDeg, j),
		CloudCover:  valueAt(ls.CloudCover, j),
	}
}

func valueAt(vals []*float64, j int) weather.Value {
	if j >= len(vals) || vals[j] == nil {
		return weather.Missing
	}
	return weather.Of(*vals[j])
}

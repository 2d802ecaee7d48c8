package weather

import (
	"fmt"
	"strings"
)

// TempUnit is an air temperature unit of measure.
type TempUnit string

const (
	Celsius    TempUnit = "C"
	Fahrenheit TempUnit = "F"
	Kelvin     TempUnit = "K"
)

// SpeedUnit is a wind speed unit of measure.
type SpeedUnit string

const (
	MetersPerSecond   SpeedUnit = "mps"
	MilesPerHour      SpeedUnit = "mph"
	KilometersPerHour SpeedUnit = "kph"
	Knots             SpeedUnit = "kts"
)

// metres per second in one unit
var speedFactors = map[SpeedUnit]float64{
	MetersPerSecond:   1,
	MilesPerHour:      0.44704,
	KilometersPerHour: 1000.0 / 3600.0,
	Knots:             1852.0 / 3600.0,
}

// ParseTempUnit accepts C, F or K (case-insensitive, optional "deg" prefix).
func ParseTempUnit(s string) (TempUnit, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "DEG") {
	case "C", "CELSIUS":
		return Celsius, nil
	case "F", "FAHRENHEIT":
		return Fahrenheit, nil
	case "K", "KELVIN":
		return Kelvin, nil
	}
	return "", fmt.Errorf("unknown air temperature unit %q", s)
}

// ParseSpeedUnit accepts mps, mph, kph or kts (case-insensitive).
func ParseSpeedUnit(s string) (SpeedUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mps", "m/s":
		return MetersPerSecond, nil
	case "mph":
		return MilesPerHour, nil
	case "kph", "km/h", "kmh":
		return KilometersPerHour, nil
	case "kts", "kt", "knots":
		return Knots, nil
	}
	return "", fmt.Errorf("unknown wind speed unit %q", s)
}

// ConvertTemp converts v from one temperature unit to another.
// Unknown units are treated as Celsius.
func ConvertTemp(v float64, from, to TempUnit) float64 {
	if from == to {
		return v
	}
	c := v
	switch from {
	case Fahrenheit:
		c = (v - 32) * 5 / 9
	case Kelvin:
		c = v - 273.15
	}
	switch to {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + 273.15
	}
	return c
}

// ConvertSpeed converts v from one wind speed unit to another.
// Unknown units are treated as metres per second.
func ConvertSpeed(v float64, from, to SpeedUnit) float64 {
	if from == to {
		return v
	}
	return v * factor(from) / factor(to)
}

func factor(u SpeedUnit) float64 {
	if f, ok := speedFactors[u]; ok {
		return f
	}
	return 1
}

// Units selects the display units a consumer wants readings in.
// The field itself always holds canonical units.
type Units struct {
	AirTemp   TempUnit  `json:"airTemp"`
	WindSpeed SpeedUnit `json:"windSpeed"`
}

// DefaultUnits are Fahrenheit and miles per hour.
func DefaultUnits() Units {
	return Units{AirTemp: Fahrenheit, WindSpeed: MilesPerHour}
}

// Reading is a tuple converted to display units. Missing components are nil.
type Reading struct {
	AirTemp     *float64 `json:"airTemp"`
	RelHumidity *float64 `json:"relHumidityPct"`
	WindSpeed   *float64 `json:"windSpeed"`
	WindDir     *float64 `json:"windDirDeg"`
	CloudCover  *float64 `json:"cloudCoverPct"`
	Missing     bool     `json:"missing"`
	Units       Units    `json:"units"`
}

// Reading converts t into the configured display units.
func (u Units) Reading(t Tuple) Reading {
	return Reading{
		AirTemp:     t.AirTempIn(u.AirTemp).Ptr(),
		RelHumidity: t.RelHumidity.Ptr(),
		WindSpeed:   t.WindSpeedIn(u.WindSpeed).Ptr(),
		WindDir:     t.WindDir.Ptr(),
		CloudCover:  t.CloudCover.Ptr(),
		Missing:     t.IsMissing(),
		Units:       u,
	}
}

package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a single weather component that may be missing.
// The zero Value is missing.
type Value struct {
	v  float64
	ok bool
}

// Missing is the missing component value.
var Missing = Value{}

// Of returns a present Value. NaN and infinities are treated as missing.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Value{v: v, ok: true}
}

// IsMissing reports whether the component has no value.
func (v Value) IsMissing() bool {
	return !v.ok
}

// Float returns the raw value and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.v, v.ok
}

// Ptr returns a pointer to the value, or nil when missing.
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as missing.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f == nil {
		*v = Missing
		return nil
	}
	*v = Of(*f)
	return nil
}

func (v Value) String() string {
	if !v.ok {
		return "missing"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// Component identifies one of the five tuple components.
type Component int

const (
	AirTemp Component = iota
	RelHumidity
	WindSpeed
	WindDir
	CloudCover

	NumComponents = 5
)

var componentNames = [NumComponents]string{"air_temp", "rel_humidity", "wind_speed", "wind_dir", "cloud_cover"}

func (c Component) String() string {
	if c < 0 || int(c) >= NumComponents {
		return "component(" + strconv.Itoa(int(c)) + ")"
	}
	return componentNames[c]
}

// Tuple is a fire-weather sample. Components are stored in canonical units:
// air temperature in degC, relative humidity in percent, wind speed in m/s,
// wind direction in degrees and cloud cover in percent.
//
// Tuple is comparable, so == and map keys work on component values.
type Tuple struct {
	AirTemp     Value `json:"airTempC"`
	RelHumidity Value `json:"relHumidityPct"`
	WindSpeed   Value `json:"windSpeedMs"`
	WindDir     Value `json:"windDirDeg"`
	CloudCover  Value `json:"cloudCoverPct"`
}

// MissingTuple has every component missing.
var MissingTuple = Tuple{}

// NewTuple builds a tuple from canonical-unit values.
func NewTuple(airTempC, relHumidity, windSpeedMS, windDirDeg, cloudCover float64) Tuple {
	return Tuple{
		AirTemp:     Of(airTempC),
		RelHumidity: Of(relHumidity),
		WindSpeed:   Of(windSpeedMS),
		WindDir:     Of(windDirDeg),
		CloudCover:  Of(cloudCover),
	}
}

// Components returns the components in Component order.
func (t Tuple) Components() [NumComponents]Value {
	return [NumComponents]Value{t.AirTemp, t.RelHumidity, t.WindSpeed, t.WindDir, t.CloudCover}
}

// Component returns the i'th component.
func (t Tuple) Component(c Component) Value {
	switch c {
	case AirTemp:
		return t.AirTemp
	case RelHumidity:
		return t.RelHumidity
	case WindSpeed:
		return t.WindSpeed
	case WindDir:
		return t.WindDir
	case CloudCover:
		return t.CloudCover
	}
	return Missing
}

func fromComponents(c [NumComponents]Value) Tuple {
	return Tuple{AirTemp: c[0], RelHumidity: c[1], WindSpeed: c[2], WindDir: c[3], CloudCover: c[4]}
}

// IsMissing reports whether every component is missing.
func (t Tuple) IsMissing() bool {
	return t == MissingTuple
}

// HasMissing reports whether at least one component is missing.
func (t Tuple) HasMissing() bool {
	for _, c := range t.Components() {
		if c.IsMissing() {
			return true
		}
	}
	return false
}

// AirTempIn returns the air temperature converted to u.
func (t Tuple) AirTempIn(u TempUnit) Value {
	f, ok := t.AirTemp.Float()
	if !ok {
		return Missing
	}
	return Of(ConvertTemp(f, Celsius, u))
}

// WindSpeedIn returns the wind speed converted to u.
func (t Tuple) WindSpeedIn(u SpeedUnit) Value {
	f, ok := t.WindSpeed.Float()
	if !ok {
		return Missing
	}
	return Of(ConvertSpeed(f, MetersPerSecond, u))
}

func (t Tuple) String() string {
	return fmt.Sprintf("Air: %s C, RH: %s %%, Spd: %s m/s, Dir: %s deg, Sky: %s %%",
		t.AirTemp, t.RelHumidity, t.WindSpeed, t.WindDir, t.CloudCover)
}

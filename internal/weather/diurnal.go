package weather

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidCycle is returned for diurnal cycles that cannot be evaluated.
var ErrInvalidCycle = errors.New("invalid diurnal cycle")

const (
	noonHour      = 12.0
	afternoonHour = 14.0
)

// Anchors are the four daily reference values of a diurnal curve.
type Anchors struct {
	Sunrise   float64 `yaml:"sunrise" json:"sunrise"`
	Noon      float64 `yaml:"noon" json:"noon"`
	Afternoon float64 `yaml:"afternoon" json:"afternoon"` // 14:00
	Sunset    float64 `yaml:"sunset" json:"sunset"`
}

// DefaultAirTemps are the 65/80/82/75 F anchors, in degC.
func DefaultAirTemps() Anchors {
	return Anchors{
		Sunrise:   ConvertTemp(65, Fahrenheit, Celsius),
		Noon:      ConvertTemp(80, Fahrenheit, Celsius),
		Afternoon: ConvertTemp(82, Fahrenheit, Celsius),
		Sunset:    ConvertTemp(75, Fahrenheit, Celsius),
	}
}

// DefaultHumidities are the 60/25/20/40 % anchors.
func DefaultHumidities() Anchors {
	return Anchors{Sunrise: 60, Noon: 25, Afternoon: 20, Sunset: 40}
}

// ScheduleEntry holds a value that applies from Hour until the next entry.
type ScheduleEntry struct {
	Hour  float64
	Value float64
}

// Schedule is a step function over the hour of day.
type Schedule []ScheduleEntry

// NewSchedule builds a schedule from hour -> value pairs.
func NewSchedule(values map[float64]float64) Schedule {
	s := make(Schedule, 0, len(values))
	for h, v := range values {
		s = append(s, ScheduleEntry{Hour: h, Value: v})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Hour < s[j].Hour })
	return s
}

// At returns the value of the latest entry at or before hour. Hours before
// the first entry, and every hour of an empty schedule, read as calm: 0.
func (s Schedule) At(hour float64) Value {
	i := sort.Search(len(s), func(i int) bool { return s[i].Hour > hour })
	if i == 0 {
		return Of(0)
	}
	return Of(s[i-1].Value)
}

// DiurnalCycle derives a 24 hour weather cycle from the sunrise, noon,
// 14:00 and sunset anchors. Times are local solar hours in [0, 24).
// Air temperatures are degC and wind speeds m/s.
type DiurnalCycle struct {
	Sunrise float64
	Sunset  float64

	AirTemps   Anchors
	Humidities Anchors

	WindSpeeds  Schedule
	WindDirs    Schedule
	CloudCovers Schedule
}

// Validate checks that the anchors can be placed on the day.
func (c DiurnalCycle) Validate() error {
	if !(c.Sunrise > 0 && c.Sunrise < noonHour) {
		return fmt.Errorf("%w: sunrise %.2f must be between 0 and 12", ErrInvalidCycle, c.Sunrise)
	}
	if !(c.Sunset > afternoonHour && c.Sunset < 24) {
		return fmt.Errorf("%w: sunset %.2f must be between 14 and 24", ErrInvalidCycle, c.Sunset)
	}
	for _, rh := range []float64{c.Humidities.Sunrise, c.Humidities.Noon, c.Humidities.Afternoon, c.Humidities.Sunset} {
		if rh < 0 || rh > 100 {
			return fmt.Errorf("%w: relative humidity %.1f out of range", ErrInvalidCycle, rh)
		}
	}
	for _, e := range c.WindSpeeds {
		if e.Value < 0 {
			return fmt.Errorf("%w: negative wind speed at %.2f", ErrInvalidCycle, e.Hour)
		}
	}
	for _, e := range c.CloudCovers {
		if e.Value < 0 || e.Value > 100 {
			return fmt.Errorf("%w: cloud cover %.1f at %.2f out of range", ErrInvalidCycle, e.Value, e.Hour)
		}
	}
	return nil
}

// At evaluates the cycle at a local hour of day.
func (c DiurnalCycle) At(hour float64) Tuple {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}
	return Tuple{
		AirTemp:     Of(c.curve(hour, c.AirTemps)),
		RelHumidity: Of(c.curve(hour, c.Humidities)),
		WindSpeed:   c.WindSpeeds.At(hour),
		WindDir:     c.WindDirs.At(hour),
		CloudCover:  c.CloudCovers.At(hour),
	}
}

func (c DiurnalCycle) curve(t float64, a Anchors) float64 {
	switch {
	case t < c.Sunrise || t > c.Sunset:
		return nighttime(t, c.Sunset, c.Sunrise, a.Sunset, a.Sunrise)
	case t < noonHour:
		return morning(t, c.Sunrise, a.Sunrise, a.Noon)
	case t > afternoonHour:
		return lateAfternoon(t, c.Sunset, a.Afternoon, a.Sunset)
	default:
		return earlyAfternoon(t, a.Noon, a.Afternoon)
	}
}

// sine rise from the sunset value to the next sunrise value
func nighttime(t, sunset, sunrise, atSunset, atSunrise float64) float64 {
	sunrise += 24
	if t < sunset {
		t += 24
	}
	return atSunset + (atSunrise-atSunset)*math.Sin(toRad(90*(t-sunset)/(sunrise-sunset)))
}

func morning(t, sunrise, atSunrise, atNoon float64) float64 {
	return atNoon + (atSunrise-atNoon)*math.Cos(toRad(90*(t-sunrise)/(noonHour-sunrise)))
}

func earlyAfternoon(t, atNoon, atAfternoon float64) float64 {
	x := (t - noonHour) / (afternoonHour - noonHour)
	return atNoon + (atAfternoon-atNoon)*x
}

func lateAfternoon(t, sunset, atAfternoon, atSunset float64) float64 {
	return atAfternoon + (atAfternoon-atSunset)*(math.Cos(toRad(90*(t-afternoonHour)/(sunset-afternoonHour)))-1)
}

func toRad(d float64) float64 { return d * math.Pi / 180 }

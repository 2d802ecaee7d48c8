package field

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TimeAxis is a strictly increasing, non-empty sequence of sample times held
// as seconds since the unix epoch.
type TimeAxis struct {
	secs []float64
}

// TimeLookup brackets a query time. Lower == Upper and Frac == 0 on an exact hit.
type TimeLookup struct {
	Lower int
	Upper int
	Frac  float64
}

// NewTimeAxisSeconds builds an axis from epoch seconds.
func NewTimeAxisSeconds(secs []float64) (*TimeAxis, error) {
	if len(secs) == 0 {
		return nil, fmt.Errorf("%w: empty time axis", ErrInvalidDomain)
	}
	for i, s := range secs {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: time axis sample %d is not finite", ErrInvalidDomain, i)
		}
		if i > 0 && !(s > secs[i-1]) {
			return nil, fmt.Errorf("%w: time axis not strictly increasing at index %d", ErrInvalidDomain, i)
		}
	}
	out := make([]float64, len(secs))
	copy(out, secs)
	return &TimeAxis{secs: out}, nil
}

// NewTimeAxis builds an axis from sample times.
func NewTimeAxis(times []time.Time) (*TimeAxis, error) {
	secs := make([]float64, len(times))
	for i, t := range times {
		secs[i] = epochSeconds(t)
	}
	return NewTimeAxisSeconds(secs)
}

// HourlyAxis builds an axis of hours consecutive samples one hour apart.
func HourlyAxis(start time.Time, hours int) (*TimeAxis, error) {
	if hours < 1 {
		return nil, fmt.Errorf("%w: hourly axis needs at least one hour, got %d", ErrInvalidDomain, hours)
	}
	times := make([]time.Time, hours)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return NewTimeAxis(times)
}

// Len returns the number of samples.
func (a *TimeAxis) Len() int { return len(a.secs) }

// Seconds returns the i'th sample as epoch seconds.
func (a *TimeAxis) Seconds(i int) float64 { return a.secs[i] }

// At returns the i'th sample time in UTC.
func (a *TimeAxis) At(i int) time.Time { return fromEpochSeconds(a.secs[i]) }

// Start returns the first sample time.
func (a *TimeAxis) Start() time.Time { return a.At(0) }

// End returns the last sample time.
func (a *TimeAxis) End() time.Time { return a.At(len(a.secs) - 1) }

// Times returns every sample time.
func (a *TimeAxis) Times() []time.Time {
	out := make([]time.Time, len(a.secs))
	for i := range a.secs {
		out[i] = a.At(i)
	}
	return out
}

// Locate brackets t. The second result is false when t lies before the first
// or after the last sample; the axis is never extrapolated.
func (a *TimeAxis) Locate(t time.Time) (TimeLookup, bool) {
	return a.LocateSeconds(epochSeconds(t))
}

// LocateSeconds is Locate for epoch seconds.
func (a *TimeAxis) LocateSeconds(s float64) (TimeLookup, bool) {
	n := len(a.secs)
	if n == 0 || math.IsNaN(s) || s < a.secs[0] || s > a.secs[n-1] {
		return TimeLookup{}, false
	}

	i := sort.SearchFloat64s(a.secs, s)
	if a.secs[i] == s {
		return TimeLookup{Lower: i, Upper: i}, true
	}

	lo, hi := i-1, i
	return TimeLookup{
		Lower: lo,
		Upper: hi,
		Frac:  (s - a.secs[lo]) / (a.secs[hi] - a.secs[lo]),
	}, true
}

func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromEpochSeconds(s float64) time.Time {
	sec := int64(s)
	nsec := int64((s - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

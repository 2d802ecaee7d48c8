package field

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-field/internal/weather"
)

// Order fixes how the sample table is laid out.
type Order int

const (
	// TimeMajor stores one slice of every location per time sample.
	TimeMajor Order = iota
	// SpaceMajor stores one series of every time sample per location.
	SpaceMajor
)

func (o Order) String() string {
	switch o {
	case TimeMajor:
		return "time_major"
	case SpaceMajor:
		return "space_major"
	}
	return fmt.Sprintf("order(%d)", int(o))
}

// MarshalText encodes the order by name.
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an order name.
func (o *Order) UnmarshalText(b []byte) error {
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseOrder accepts "time_major" or "space_major". Empty means TimeMajor.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "time_major", "time":
		return TimeMajor, nil
	case "space_major", "space":
		return SpaceMajor, nil
	}
	return 0, fmt.Errorf("%w: unknown order %q", ErrInvalidDomain, s)
}

// Field binds a TimeAxis and a Grid to stored weather tuples. A Field is
// immutable and safe for concurrent use.
type Field struct {
	axis  *TimeAxis
	grid  Grid
	order Order
	table []weather.Tuple
}

// TimedTuple is a tuple evaluated at a time.
type TimedTuple struct {
	Time  time.Time     `json:"time"`
	Tuple weather.Tuple `json:"tuple"`
}

func (f *Field) Axis() *TimeAxis { return f.axis }
func (f *Field) Grid() Grid      { return f.grid }
func (f *Field) Order() Order    { return f.order }

// Len returns the number of cells in the table.
func (f *Field) Len() int { return len(f.table) }

// At returns the stored tuple for time index ti and spatial index si.
// Indices outside the table yield a missing tuple.
func (f *Field) At(ti, si int) weather.Tuple {
	if ti < 0 || ti >= f.axis.Len() || si < 0 || si >= f.grid.Len() {
		return weather.MissingTuple
	}
	return f.table[offset(f.order, f.axis.Len(), f.grid.Len(), ti, si)]
}

// Slice returns every location's tuple at time index ti.
func (f *Field) Slice(ti int) []weather.Tuple {
	out := make([]weather.Tuple, f.grid.Len())
	for si := range out {
		out[si] = f.At(ti, si)
	}
	return out
}

// Latest returns the slice at the last time sample.
func (f *Field) Latest() []weather.Tuple {
	return f.Slice(f.axis.Len() - 1)
}

// Evaluate interpolates the field at (t, lat, lon). Times outside the axis
// yield a fully missing tuple; positions outside the grid are clamped.
//
// Each contributing spatial corner is first interpolated in time, then the
// corner tuples are blended with the spatial weights.
func (f *Field) Evaluate(t time.Time, lat, lon float64) weather.Tuple {
	tl, ok := f.axis.Locate(t)
	if !ok {
		return weather.MissingTuple
	}
	return f.evaluate(tl, lat, lon)
}

func (f *Field) evaluate(tl TimeLookup, lat, lon float64) weather.Tuple {
	sl := f.grid.Locate(lat, lon)

	var (
		samples [4]weather.Tuple
		weights [4]float64
	)
	for i, c := range sl.Slice() {
		s := f.At(tl.Lower, c.Index)
		if tl.Upper != tl.Lower {
			s = weather.Lerp(tl.Frac, s, f.At(tl.Upper, c.Index))
		}
		samples[i] = s
		weights[i] = c.Weight
	}

	if sl.N == 1 {
		return samples[0]
	}
	return weather.Blend(samples[:sl.N], weights[:sl.N])
}

// Series evaluates the field at every axis time for one position.
func (f *Field) Series(lat, lon float64) []TimedTuple {
	out := make([]TimedTuple, f.axis.Len())
	for i := range out {
		out[i] = TimedTuple{
			Time:  f.axis.At(i),
			Tuple: f.evaluate(TimeLookup{Lower: i, Upper: i}, lat, lon),
		}
	}
	return out
}

func offset(o Order, nTime, nSpace, ti, si int) int {
	if o == SpaceMajor {
		return si*nTime + ti
	}
	return ti*nSpace + si
}

// Builder populates a field table. Unset cells are fully missing. A Builder
// is not safe for concurrent use.
type Builder struct {
	axis   *TimeAxis
	grid   Grid
	order  Order
	table  []weather.Tuple
	frozen bool
}

// NewBuilder allocates a fully missing table of axis.Len() x grid.Len() cells.
func NewBuilder(axis *TimeAxis, grid Grid, order Order) (*Builder, error) {
	if axis == nil || axis.Len() == 0 {
		return nil, fmt.Errorf("%w: missing time axis", ErrInvalidDomain)
	}
	if grid == nil || grid.Len() == 0 {
		return nil, fmt.Errorf("%w: missing spatial grid", ErrInvalidDomain)
	}
	if order != TimeMajor && order != SpaceMajor {
		return nil, fmt.Errorf("%w: unknown order %d", ErrInvalidDomain, int(order))
	}
	return &Builder{
		axis:  axis,
		grid:  grid,
		order: order,
		table: make([]weather.Tuple, axis.Len()*grid.Len()),
	}, nil
}

func (b *Builder) Axis() *TimeAxis { return b.axis }
func (b *Builder) Grid() Grid      { return b.grid }

// Set stores one cell.
func (b *Builder) Set(ti, si int, t weather.Tuple) error {
	if b.frozen {
		return ErrFrozen
	}
	if ti < 0 || ti >= b.axis.Len() || si < 0 || si >= b.grid.Len() {
		return fmt.Errorf("%w: cell (%d, %d) outside %dx%d table", ErrIndexOutOfRange, ti, si, b.axis.Len(), b.grid.Len())
	}
	b.table[offset(b.order, b.axis.Len(), b.grid.Len(), ti, si)] = t
	return nil
}

// SetTimeSlice stores every location at time index ti.
func (b *Builder) SetTimeSlice(ti int, slice []weather.Tuple) error {
	if b.frozen {
		return ErrFrozen
	}
	if len(slice) != b.grid.Len() {
		return fmt.Errorf("%w: time slice has %d cells, grid has %d", ErrInvalidDomain, len(slice), b.grid.Len())
	}
	if ti < 0 || ti >= b.axis.Len() {
		return fmt.Errorf("%w: time index %d outside axis of %d", ErrIndexOutOfRange, ti, b.axis.Len())
	}
	for si, t := range slice {
		b.table[offset(b.order, b.axis.Len(), b.grid.Len(), ti, si)] = t
	}
	return nil
}

// SetLocationSeries stores every time sample at spatial index si.
func (b *Builder) SetLocationSeries(si int, series []weather.Tuple) error {
	if b.frozen {
		return ErrFrozen
	}
	if len(series) != b.axis.Len() {
		return fmt.Errorf("%w: series has %d samples, axis has %d", ErrInvalidDomain, len(series), b.axis.Len())
	}
	if si < 0 || si >= b.grid.Len() {
		return fmt.Errorf("%w: spatial index %d outside grid of %d", ErrIndexOutOfRange, si, b.grid.Len())
	}
	for ti, t := range series {
		b.table[offset(b.order, b.axis.Len(), b.grid.Len(), ti, si)] = t
	}
	return nil
}

// Freeze hands the table to an immutable Field. Later writes fail with ErrFrozen.
func (b *Builder) Freeze() *Field {
	b.frozen = true
	return &Field{axis: b.axis, grid: b.grid, order: b.order, table: b.table}
}

// Build creates a builder, runs populate and freezes the result. Nothing is
// returned if populate fails.
func Build(axis *TimeAxis, grid Grid, order Order, populate func(*Builder) error) (*Field, error) {
	b, err := NewBuilder(axis, grid, order)
	if err != nil {
		return nil, err
	}
	if populate != nil {
		if err := populate(b); err != nil {
			return nil, err
		}
	}
	return b.Freeze(), nil
}

// FromTable builds a field from a complete table. The outer index follows
// order: time samples for TimeMajor, locations for SpaceMajor.
func FromTable(axis *TimeAxis, grid Grid, order Order, table [][]weather.Tuple) (*Field, error) {
	return Build(axis, grid, order, func(b *Builder) error {
		outer, inner := axis.Len(), grid.Len()
		if order == SpaceMajor {
			outer, inner = inner, outer
		}
		if len(table) != outer {
			return fmt.Errorf("%w: table has %d rows, want %d", ErrInvalidDomain, len(table), outer)
		}
		for i, row := range table {
			if len(row) != inner {
				return fmt.Errorf("%w: table row %d has %d cells, want %d", ErrInvalidDomain, i, len(row), inner)
			}
			var err error
			if order == SpaceMajor {
				err = b.SetLocationSeries(i, row)
			} else {
				err = b.SetTimeSlice(i, row)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

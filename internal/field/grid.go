package field

import (
	"fmt"
	"math"
)

// snapTol is the distance below which a fractional row or column is treated
// as lying on a grid line.
const snapTol = 1e-9

const earthRadiusKm = 6371.0

// LatLon is a geographic position in degrees.
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Corner is one contributing grid node of a spatial lookup.
type Corner struct {
	Row    int
	Col    int
	Index  int
	Weight float64
}

// SpatialLookup holds up to four corners with positive weights summing to one.
type SpatialLookup struct {
	Corners [4]Corner
	N       int
}

// Slice returns the populated corners.
func (l SpatialLookup) Slice() []Corner {
	return l.Corners[:l.N]
}

func (l *SpatialLookup) add(c Corner) {
	if c.Weight <= 0 {
		return
	}
	l.Corners[l.N] = c
	l.N++
}

// Grid is a 2D geographic sampling lattice.
type Grid interface {
	// Len returns the number of cells.
	Len() int
	// Locate maps a position to contributing cells and weights. It never fails.
	Locate(lat, lon float64) SpatialLookup
	// Point returns the position of cell i.
	Point(i int) LatLon
	// Bounds returns the south-west and north-east corners of the grid.
	Bounds() (sw, ne LatLon)
	// Contains reports whether a position lies inside Bounds.
	Contains(lat, lon float64) bool
}

// RegularGrid is a uniform lattice. Latitude increases with row index and
// longitude with column index.
type RegularGrid struct {
	minLat, minLon float64
	maxLat, maxLon float64
	rows, cols     int
	dLat, dLon     float64
}

// NewRegularGrid builds a rows x cols lattice spanning the given corners.
// A single row or column places every node on the minimum edge.
func NewRegularGrid(minLat, minLon, maxLat, maxLon float64, rows, cols int) (*RegularGrid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: grid needs at least one row and column, got %dx%d", ErrInvalidDomain, rows, cols)
	}
	for _, v := range []float64{minLat, minLon, maxLat, maxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: grid bounds must be finite", ErrInvalidDomain)
		}
	}
	if minLat < -90 || maxLat > 90 {
		return nil, fmt.Errorf("%w: latitude out of range [%v, %v]", ErrInvalidDomain, minLat, maxLat)
	}
	if maxLat < minLat || maxLon < minLon {
		return nil, fmt.Errorf("%w: max corner (%v, %v) below min corner (%v, %v)", ErrInvalidDomain, maxLat, maxLon, minLat, minLon)
	}
	if rows > 1 && maxLat == minLat {
		return nil, fmt.Errorf("%w: %d rows over zero latitude span", ErrInvalidDomain, rows)
	}
	if cols > 1 && maxLon == minLon {
		return nil, fmt.Errorf("%w: %d columns over zero longitude span", ErrInvalidDomain, cols)
	}

	g := &RegularGrid{
		minLat: minLat, minLon: minLon,
		maxLat: maxLat, maxLon: maxLon,
		rows: rows, cols: cols,
	}
	if rows > 1 {
		g.dLat = (maxLat - minLat) / float64(rows-1)
	}
	if cols > 1 {
		g.dLon = (maxLon - minLon) / float64(cols-1)
	}
	return g, nil
}

// PointGrid is a 1x1 grid at a single location.
func PointGrid(lat, lon float64) (*RegularGrid, error) {
	return NewRegularGrid(lat, lon, lat, lon, 1, 1)
}

func (g *RegularGrid) Rows() int { return g.rows }
func (g *RegularGrid) Cols() int { return g.cols }
func (g *RegularGrid) Len() int  { return g.rows * g.cols }

// Index returns the cell index of (row, col).
func (g *RegularGrid) Index(row, col int) int { return row*g.cols + col }

// Node returns the position of grid node (row, col).
func (g *RegularGrid) Node(row, col int) LatLon {
	return LatLon{
		Lat: g.minLat + float64(row)*g.dLat,
		Lon: g.minLon + float64(col)*g.dLon,
	}
}

// Point returns the position of cell i.
func (g *RegularGrid) Point(i int) LatLon {
	return g.Node(i/g.cols, i%g.cols)
}

func (g *RegularGrid) Bounds() (sw, ne LatLon) {
	return LatLon{Lat: g.minLat, Lon: g.minLon}, LatLon{Lat: g.maxLat, Lon: g.maxLon}
}

func (g *RegularGrid) Contains(lat, lon float64) bool {
	return lat >= g.minLat && lat <= g.maxLat && lon >= g.minLon && lon <= g.maxLon
}

// Locate returns the bilinear corners around (lat, lon). Positions outside the
// grid are clamped to the nearest edge.
func (g *RegularGrid) Locate(lat, lon float64) SpatialLookup {
	r0, r1, rf := bracket(lat, g.minLat, g.dLat, g.rows)
	c0, c1, cf := bracket(lon, g.minLon, g.dLon, g.cols)

	var l SpatialLookup
	l.add(g.corner(r0, c0, (1-rf)*(1-cf)))
	if c1 != c0 {
		l.add(g.corner(r0, c1, (1-rf)*cf))
	}
	if r1 != r0 {
		l.add(g.corner(r1, c0, rf*(1-cf)))
		if c1 != c0 {
			l.add(g.corner(r1, c1, rf*cf))
		}
	}
	return l
}

func (g *RegularGrid) corner(row, col int, w float64) Corner {
	return Corner{Row: row, Col: col, Index: g.Index(row, col), Weight: w}
}

// bracket returns the two lattice lines around v and the fraction between them.
func bracket(v, origin, step float64, n int) (lo, hi int, frac float64) {
	if n == 1 || step == 0 || math.IsNaN(v) {
		return 0, 0, 0
	}
	pos := (v - origin) / step
	last := float64(n - 1)
	switch {
	case pos <= 0:
		return 0, 0, 0
	case pos >= last:
		return n - 1, n - 1, 0
	}
	if r := math.Round(pos); math.Abs(pos-r) < snapTol {
		i := int(r)
		return i, i, 0
	}
	lo = int(math.Floor(pos))
	return lo, lo + 1, pos - float64(lo)
}

// ScatteredGrid is an explicit list of sample points. Lookups resolve to the
// single nearest point; no interpolation between points is performed.
type ScatteredGrid struct {
	points []LatLon
}

// NewScatteredGrid builds a grid from a non-empty point list.
func NewScatteredGrid(points []LatLon) (*ScatteredGrid, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: scattered grid needs at least one point", ErrInvalidDomain)
	}
	for i, p := range points {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 360 {
			return nil, fmt.Errorf("%w: point %d (%v, %v) out of range", ErrInvalidDomain, i, p.Lat, p.Lon)
		}
	}
	out := make([]LatLon, len(points))
	copy(out, points)
	return &ScatteredGrid{points: out}, nil
}

func (g *ScatteredGrid) Len() int          { return len(g.points) }
func (g *ScatteredGrid) Point(i int) LatLon { return g.points[i] }

// Locate returns the nearest point by great-circle distance with weight 1.
// Ties go to the lowest index.
func (g *ScatteredGrid) Locate(lat, lon float64) SpatialLookup {
	best, bestDist := 0, math.Inf(1)
	for i, p := range g.points {
		if d := haversineKm(lat, lon, p.Lat, p.Lon); d < bestDist {
			best, bestDist = i, d
		}
	}
	var l SpatialLookup
	l.add(Corner{Row: 0, Col: best, Index: best, Weight: 1})
	return l
}

func (g *ScatteredGrid) Bounds() (sw, ne LatLon) {
	sw, ne = g.points[0], g.points[0]
	for _, p := range g.points[1:] {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lon = math.Min(sw.Lon, p.Lon)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lon = math.Max(ne.Lon, p.Lon)
	}
	return sw, ne
}

func (g *ScatteredGrid) Contains(lat, lon float64) bool {
	sw, ne := g.Bounds()
	return lat >= sw.Lat && lat <= ne.Lat && lon >= sw.Lon && lon <= ne.Lon
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := toRad(lat1), toRad(lat2)
	dp := p2 - p1
	dl := toRad(lon2 - lon1)
	a := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func toRad(d float64) float64 { return d * math.Pi / 180 }

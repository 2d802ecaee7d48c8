package field

import (
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/i474232898/weather-field/internal/weather"
)

// GridFeatures returns one point feature per grid cell plus the grid bounds
// as a polygon feature.
func GridFeatures(g Grid) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < g.Len(); i++ {
		fc.AddFeature(nodeFeature(g, i))
	}
	fc.AddFeature(boundsFeature(g))
	return fc
}

// SliceFeatures returns the grid cells at time index ti with their readings
// converted to units.
func SliceFeatures(f *Field, ti int, units weather.Units) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var at time.Time
	if ti >= 0 && ti < f.axis.Len() {
		at = f.axis.At(ti)
	}
	for si, t := range f.Slice(ti) {
		feat := nodeFeature(f.grid, si)
		feat.SetProperty("time", at.Format(time.RFC3339))
		feat.SetProperty("reading", units.Reading(t))
		fc.AddFeature(feat)
	}
	return fc
}

// LatestFeatures is SliceFeatures at the last time sample.
func LatestFeatures(f *Field, units weather.Units) *geojson.FeatureCollection {
	return SliceFeatures(f, f.axis.Len()-1, units)
}

func nodeFeature(g Grid, i int) *geojson.Feature {
	p := g.Point(i)
	feat := geojson.NewPointFeature([]float64{p.Lon, p.Lat})
	feat.SetProperty("index", i)
	if rg, ok := g.(*RegularGrid); ok {
		feat.SetProperty("row", i/rg.Cols())
		feat.SetProperty("col", i%rg.Cols())
	}
	return feat
}

func boundsFeature(g Grid) *geojson.Feature {
	sw, ne := g.Bounds()
	ring := [][]float64{
		{sw.Lon, sw.Lat},
		{ne.Lon, sw.Lat},
		{ne.Lon, ne.Lat},
		{sw.Lon, ne.Lat},
		{sw.Lon, sw.Lat},
	}
	feat := geojson.NewPolygonFeature([][][]float64{ring})
	feat.SetProperty("kind", "bounds")
	return feat
}

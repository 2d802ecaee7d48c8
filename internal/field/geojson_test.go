package field

import (
	"encoding/json"
	"testing"

	"github.com/i474232898/weather-field/internal/weather"
)

func TestGridFeatures(t *testing.T) {
	g, _ := NewRegularGrid(34, -120, 35, -119, 2, 3)

	fc := GridFeatures(g)
	if len(fc.Features) != 7 {
		t.Fatalf("expected 6 nodes and a bounds polygon, got %d features", len(fc.Features))
	}

	node := fc.Features[4]
	if !node.Geometry.IsPoint() {
		t.Fatalf("expected point geometry")
	}
	if lon, lat := node.Geometry.Point[0], node.Geometry.Point[1]; lon != -119.5 || lat != 35 {
		t.Fatalf("node 4 at (%v, %v), want (-119.5, 35)", lon, lat)
	}
	if node.Properties["row"] != 1 || node.Properties["col"] != 1 {
		t.Fatalf("unexpected properties %v", node.Properties)
	}

	if !fc.Features[6].Geometry.IsPolygon() {
		t.Fatalf("expected bounds polygon last")
	}

	if _, err := json.Marshal(fc); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestLatestFeatures(t *testing.T) {
	f := scenarioField(t, TimeMajor)

	fc := LatestFeatures(f, weather.Units{AirTemp: weather.Celsius, WindSpeed: weather.MetersPerSecond})
	if len(fc.Features) != 25 {
		t.Fatalf("expected 25 features, got %d", len(fc.Features))
	}

	r, ok := fc.Features[24].Properties["reading"].(weather.Reading)
	if !ok {
		t.Fatalf("reading property has type %T", fc.Features[24].Properties["reading"])
	}
	// last sample: 1 + 24 + 11
	if r.AirTemp == nil || *r.AirTemp != 36 {
		t.Fatalf("unexpected reading %+v", r)
	}
}

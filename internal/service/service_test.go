package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/service"
	"github.com/i474232898/weather-field/internal/store"
	"github.com/i474232898/weather-field/internal/weather"
)

var t0 = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

// rampSource builds a 2-hour single-point field whose air temperature is
// base at t0 and base+1 an hour later.
type rampSource struct {
	base float64
	err  error
}

func (s *rampSource) Name() string { return "ramp" }

func (s *rampSource) Build(ctx context.Context) (*field.Field, error) {
	if s.err != nil {
		return nil, s.err
	}
	axis, _ := field.HourlyAxis(t0, 2)
	grid, _ := field.PointGrid(34, -119)
	return field.FromTable(axis, grid, field.TimeMajor, [][]weather.Tuple{
		{weather.NewTuple(s.base, 40, 2, 90, 0)},
		{weather.NewTuple(s.base+1, 40, 2, 90, 0)},
	})
}

func TestServiceRebuildAndEvaluate(t *testing.T) {
	src := &rampSource{base: 10}
	svc := service.NewService(store.NewMemoryStore(5, 0), map[string]service.Source{"coast": src})

	if _, _, err := svc.Evaluate("coast", t0, 34, -119); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before the first build, got %v", err)
	}

	snap, err := svc.Rebuild(context.Background(), "coast")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if snap.Region != "coast" || snap.Source != "ramp" || snap.Field == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	tup, got, err := svc.Evaluate("coast", t0.Add(15*time.Minute), 34, -119)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got.ID != snap.ID {
		t.Fatalf("evaluated against %s, want %s", got.ID, snap.ID)
	}
	if v, _ := tup.AirTemp.Float(); math.Abs(v-10.25) > 1e-9 {
		t.Fatalf("air temp = %v, want 10.25", v)
	}

	series, _, err := svc.Series("coast", 34, -119)
	if err != nil || len(series) != 2 {
		t.Fatalf("series: %v, %d points", err, len(series))
	}
}

func TestServiceKeepsLastGoodField(t *testing.T) {
	src := &rampSource{base: 10}
	svc := service.NewService(store.NewMemoryStore(5, 0), map[string]service.Source{"coast": src})

	good, err := svc.Rebuild(context.Background(), "coast")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	src.err = errors.New("upstream down")
	if _, err := svc.Rebuild(context.Background(), "coast"); err == nil {
		t.Fatalf("expected rebuild error")
	}

	latest, err := svc.Latest("coast")
	if err != nil || latest.ID != good.ID {
		t.Fatalf("expected last good snapshot %s, got %s (%v)", good.ID, latest.ID, err)
	}
}

func TestServiceRebuildReplacesField(t *testing.T) {
	src := &rampSource{base: 10}
	svc := service.NewService(store.NewMemoryStore(5, 0), map[string]service.Source{"coast": src})

	first, _ := svc.Rebuild(context.Background(), "coast")
	src.base = 20
	second, _ := svc.Rebuild(context.Background(), "coast")

	if first.ID == second.ID {
		t.Fatalf("rebuild should produce a new snapshot id")
	}
	if v, _ := first.Field.At(0, 0).AirTemp.Float(); v != 10 {
		t.Fatalf("first field was mutated: %v", v)
	}
	tup, _, _ := svc.Evaluate("coast", t0, 34, -119)
	if v, _ := tup.AirTemp.Float(); v != 20 {
		t.Fatalf("air temp = %v, want 20", v)
	}

	history, err := svc.History("coast")
	if err != nil || len(history) != 2 {
		t.Fatalf("history: %v, %d snapshots", err, len(history))
	}
}

func TestServiceRebuildAll(t *testing.T) {
	failing := errors.New("broken")
	svc := service.NewService(store.NewMemoryStore(1, 0), map[string]service.Source{
		"coast":  &rampSource{base: 10},
		"valley": &rampSource{err: failing},
	})

	err := svc.RebuildAll(context.Background())
	if !errors.Is(err, failing) {
		t.Fatalf("expected joined error to include the failure, got %v", err)
	}
	if _, err := svc.Latest("coast"); err != nil {
		t.Fatalf("coast should still be built: %v", err)
	}
	if _, err := svc.Latest("valley"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for valley, got %v", err)
	}
}

func TestServiceUnknownRegion(t *testing.T) {
	svc := service.NewService(store.NewMemoryStore(1, 0), nil)

	if _, err := svc.Rebuild(context.Background(), "nowhere"); !errors.Is(err, service.ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
	if _, _, err := svc.Evaluate("nowhere", t0, 0, 0); !errors.Is(err, service.ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}

	svc.Register("later", &rampSource{})
	if regions := svc.Regions(); len(regions) != 1 || regions[0] != "later" {
		t.Fatalf("unexpected regions %v", regions)
	}
}

func TestSnapshotSummary(t *testing.T) {
	svc := service.NewService(store.NewMemoryStore(1, 0), map[string]service.Source{"coast": &rampSource{}})
	snap, _ := svc.Rebuild(context.Background(), "coast")

	sum := snap.Summary()
	if sum.Times != 2 || sum.Cells != 2 || !sum.Start.Equal(t0) || !sum.End.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

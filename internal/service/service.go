package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/metrics"
	"github.com/i474232898/weather-field/internal/weather"
)

var (
	// ErrNotFound is returned when a region has no built field yet.
	ErrNotFound = errors.New("no weather field for region")

	// ErrUnknownRegion is returned for regions without a registered source.
	ErrUnknownRegion = errors.New("unknown region")
)

// Service owns the region sources and serves queries against the most
// recently built field of each region.
type Service struct {
	store Store

	mu      sync.RWMutex
	sources map[string]Source
}

// NewService creates a new Service.
func NewService(store Store, sources map[string]Source) *Service {
	s := &Service{
		store:   store,
		sources: make(map[string]Source, len(sources)),
	}
	for region, src := range sources {
		s.sources[region] = src
	}
	return s
}

// Register adds or replaces the source of a region.
func (s *Service) Register(region string, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[region] = src
}

// Regions returns the registered region names in order.
func (s *Service) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.sources))
	for region := range s.sources {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

func (s *Service) source(region string) (Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[region]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return src, nil
}

// Rebuild builds a fresh field for region and stores it as the new current
// snapshot. On failure the last good snapshot stays current.
func (s *Service) Rebuild(ctx context.Context, region string) (Snapshot, error) {
	src, err := s.source(region)
	if err != nil {
		return Snapshot{}, err
	}

	log.Printf("DEBUG: Rebuild called for %s using %s", region, src.Name())

	started := time.Now()
	f, err := src.Build(ctx)
	if err == nil && f == nil {
		err = errors.New("source returned no field")
	}

	cells := 0
	if f != nil {
		cells = f.Len()
	}
	metrics.RecordBuild(region, time.Since(started), cells, err)

	if err != nil {
		log.Printf("ERROR: build failed for %s: %v; keeping last good field if any", region, err)
		return Snapshot{}, fmt.Errorf("rebuild %s: %w", region, err)
	}

	snap := Snapshot{
		ID:      uuid.New(),
		Region:  region,
		Source:  src.Name(),
		BuiltAt: time.Now().UTC(),
		Field:   f,
	}
	s.store.Save(snap)

	log.Printf("INFO: built field %s for %s (%d cells)", snap.ID, region, cells)
	return snap, nil
}

// RebuildAll rebuilds every region concurrently and joins the failures.
func (s *Service) RebuildAll(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, region := range s.Regions() {
		region := region
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := s.Rebuild(ctx, region); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Latest returns the current snapshot of region.
func (s *Service) Latest(region string) (Snapshot, error) {
	if _, err := s.source(region); err != nil {
		return Snapshot{}, err
	}
	return s.store.Latest(region)
}

// History returns the retained snapshots of region, oldest first.
func (s *Service) History(region string) ([]Snapshot, error) {
	if _, err := s.source(region); err != nil {
		return nil, err
	}
	return s.store.History(region)
}

// Evaluate queries the current field of region at (t, lat, lon). The tuple
// is in canonical units and may be partly or fully missing.
func (s *Service) Evaluate(region string, t time.Time, lat, lon float64) (weather.Tuple, Snapshot, error) {
	snap, err := s.Latest(region)
	if err != nil {
		return weather.MissingTuple, Snapshot{}, err
	}

	tup := snap.Field.Evaluate(t, lat, lon)
	metrics.RecordEvaluation(region, tup)
	return tup, snap, nil
}

// Series evaluates the current field of region at every sample time.
func (s *Service) Series(region string, lat, lon float64) ([]field.TimedTuple, Snapshot, error) {
	snap, err := s.Latest(region)
	if err != nil {
		return nil, Snapshot{}, err
	}
	return snap.Field.Series(lat, lon), snap, nil
}

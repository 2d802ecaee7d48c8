package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-field/internal/service"
)

// SnapshotHistory holds the built fields of a region, oldest first.
type SnapshotHistory struct {
	Snapshots []service.Snapshot
}

// MemoryStore is a concurrency-safe in-memory snapshot store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: region, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per region
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a snapshot for its region and enforces retention. The newest
// snapshot is always kept.
func (s *MemoryStore) Save(snap service.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snap.Region]
	if !ok {
		history = &SnapshotHistory{}
		s.data[snap.Region] = history
	}

	history.Snapshots = append(history.Snapshots, snap)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = append([]service.Snapshot(nil), history.Snapshots[over:]...)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].BuiltAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// Latest returns the most recent snapshot for a region.
func (s *MemoryStore) Latest(region string) (service.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[region]
	if !ok || len(history.Snapshots) == 0 {
		return service.Snapshot{}, service.ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// History returns a copy of the retained snapshots for a region.
func (s *MemoryStore) History(region string) ([]service.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[region]
	if !ok || len(history.Snapshots) == 0 {
		return nil, service.ErrNotFound
	}

	out := make([]service.Snapshot, len(history.Snapshots))
	copy(out, history.Snapshots)
	return out, nil
}

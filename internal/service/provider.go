package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-field/internal/field"
)

// Source builds a complete weather field for a region (e.g. a diurnal
// generator or a parsed forecast).
type Source interface {
	Name() string
	Build(ctx context.Context) (*field.Field, error)
}

// Snapshot is one built field. A snapshot is never modified; a rebuild
// replaces it with a new one.
type Snapshot struct {
	ID      uuid.UUID
	Region  string
	Source  string
	BuiltAt time.Time
	Field   *field.Field
}

// Summary describes a snapshot without its samples.
type Summary struct {
	ID      uuid.UUID   `json:"id"`
	Region  string      `json:"region"`
	Source  string      `json:"source"`
	BuiltAt time.Time   `json:"builtAt"`
	Order   field.Order `json:"order"`
	Times   int         `json:"times"`
	Cells   int         `json:"cells"`
	Start   time.Time   `json:"start"`
	End     time.Time   `json:"end"`
}

// Summary returns the snapshot metadata.
func (s Snapshot) Summary() Summary {
	sum := Summary{
		ID:      s.ID,
		Region:  s.Region,
		Source:  s.Source,
		BuiltAt: s.BuiltAt,
	}
	if s.Field != nil {
		sum.Order = s.Field.Order()
		sum.Times = s.Field.Axis().Len()
		sum.Cells = s.Field.Len()
		sum.Start = s.Field.Axis().Start()
		sum.End = s.Field.Axis().End()
	}
	return sum
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	Save(snap Snapshot)
	Latest(region string) (Snapshot, error)
	History(region string) ([]Snapshot, error)
}

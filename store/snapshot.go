package store

import (
	"time"

	"github.com/gcbaptista/go-browser-search/model"
)

// Snapshot is an immutable set of searchable entities built once per reload.
// Entities holds bookmarks, tabs and history in that order; search engines are
// kept apart because they bypass matching and are synthesized per query.
// A snapshot is never modified after construction; a reload builds a new one.
type Snapshot struct {
	Entities      []model.SearchableEntity
	SearchEngines []model.SearchableEntity
	BuiltAt       time.Time
}

// Stats summarizes a snapshot.
type Stats struct {
	TotalEntities int                      `json:"total_entities"`
	ByType        map[model.EntityType]int `json:"by_type"`
	SearchEngines int                      `json:"search_engines"`
	BuiltAt       time.Time                `json:"built_at"`
}

// NewSnapshot creates a snapshot from already-normalized entities.
func NewSnapshot(entities, searchEngines []model.SearchableEntity) *Snapshot {
	return &Snapshot{
		Entities:      entities,
		SearchEngines: searchEngines,
		BuiltAt:       time.Now(),
	}
}

// Count returns the number of entities of the given type.
func (s *Snapshot) Count(t model.EntityType) int {
	if t == model.EntityTypeSearchEngine {
		return len(s.SearchEngines)
	}
	n := 0
	for i := range s.Entities {
		if s.Entities[i].Type == t {
			n++
		}
	}
	return n
}

// Stats returns entity counts per type.
func (s *Snapshot) Stats() Stats {
	byType := make(map[model.EntityType]int, len(model.EntityTypes))
	for i := range s.Entities {
		byType[s.Entities[i].Type]++
	}
	return Stats{
		TotalEntities: len(s.Entities),
		ByType:        byType,
		SearchEngines: len(s.SearchEngines),
		BuiltAt:       s.BuiltAt,
	}
}

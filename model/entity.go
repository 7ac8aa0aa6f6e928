package model

import "time"

// EntityType identifies where a searchable entity comes from.
type EntityType string

const (
	EntityTypeBookmark     EntityType = "bookmark"
	EntityTypeTab          EntityType = "tab"
	EntityTypeHistory      EntityType = "history"
	EntityTypeSearchEngine EntityType = "searchEngine"
)

// FolderSeparator separates folder names in a bookmark container path.
const FolderSeparator = "/"

// EntityTypes lists every entity type in tie-break priority order.
var EntityTypes = []EntityType{EntityTypeBookmark, EntityTypeTab, EntityTypeHistory, EntityTypeSearchEngine}

// Priority returns the tie-break rank of the type (lower ranks first).
// An identical score on a bookmark outranks the same score on a tab, and so on.
func (t EntityType) Priority() int {
	switch t {
	case EntityTypeBookmark:
		return 0
	case EntityTypeTab:
		return 1
	case EntityTypeHistory:
		return 2
	case EntityTypeSearchEngine:
		return 3
	default:
		return len(EntityTypes)
	}
}

// TracksVisits reports whether entities of this type carry a visit count.
func (t EntityType) TracksVisits() bool {
	return t == EntityTypeBookmark || t == EntityTypeTab || t == EntityTypeHistory
}

// SearchableEntity is the uniform shape every tab, bookmark, history item and
// search engine is normalized into. It is immutable once part of a snapshot.
type SearchableEntity struct {
	ID            string     `json:"id"`
	Type          EntityType `json:"type"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	FolderPath    []string   `json:"folderPath,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	VisitCount    int        `json:"visitCount"`
	LastVisitedAt *time.Time `json:"lastVisitedAt,omitempty"`
}

package model

import "encoding/json"

// Field names a searchable field of an entity.
type Field string

const (
	FieldTitle  Field = "title"
	FieldURL    Field = "url"
	FieldTag    Field = "tag"
	FieldFolder Field = "folder"
)

// Fields lists every searchable field in evidence order.
var Fields = []Field{FieldTitle, FieldURL, FieldTag, FieldFolder}

// MatchKind describes how strongly a term matched a field.
type MatchKind string

const (
	MatchFuzzyApprox MatchKind = "fuzzyApprox"
	MatchSubstring   MatchKind = "substring"
	MatchStartsWith  MatchKind = "startsWith"
	MatchExactEquals MatchKind = "exactEquals"
)

// Strength orders match kinds; a higher value is a stronger match.
func (k MatchKind) Strength() int {
	switch k {
	case MatchExactEquals:
		return 4
	case MatchStartsWith:
		return 3
	case MatchSubstring:
		return 2
	case MatchFuzzyApprox:
		return 1
	default:
		return 0
	}
}

// FieldMatch is one piece of match evidence for an (entity, term) pair.
type FieldMatch struct {
	Field Field     `json:"field"`
	Term  string    `json:"term"`
	Kind  MatchKind `json:"matchKind"`
}

// Candidate is the per-entity evidence produced by a matching strategy.
// Index points into the entity slice that was handed to the strategy.
type Candidate struct {
	Index        int
	Matches      []FieldMatch
	MatchedTerms int
}

// ScoredResult is an entity with its score for the current query.
type ScoredResult struct {
	Entity        SearchableEntity
	Score         float64
	MatchedFields []FieldMatch
}

// scoredResultJSON fixes the exported shape and key order of a result.
type scoredResultJSON struct {
	ID            string       `json:"id"`
	Type          EntityType   `json:"type"`
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	Score         float64      `json:"score"`
	MatchedFields []FieldMatch `json:"matchedFields"`
}

// MarshalJSON serializes the result as {id, type, title, url, score, matchedFields}.
func (r ScoredResult) MarshalJSON() ([]byte, error) {
	matched := r.MatchedFields
	if matched == nil {
		matched = []FieldMatch{}
	}
	return json.Marshal(scoredResultJSON{
		ID:            r.Entity.ID,
		Type:          r.Entity.Type,
		Title:         r.Entity.Title,
		URL:           r.Entity.URL,
		Score:         r.Score,
		MatchedFields: matched,
	})
}

// UnmarshalJSON restores a result exported by MarshalJSON.
func (r *ScoredResult) UnmarshalJSON(data []byte) error {
	var aux scoredResultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Entity = SearchableEntity{ID: aux.ID, Type: aux.Type, Title: aux.Title, URL: aux.URL}
	r.Score = aux.Score
	r.MatchedFields = aux.MatchedFields
	return nil
}

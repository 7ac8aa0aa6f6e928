// Package config provides the options that drive matching and scoring.
// Options are loaded once per session: hardcoded defaults with user overrides
// deep-merged on top, and are read-only afterwards.
package config

import (
	"fmt"

	"github.com/gcbaptista/go-browser-search/model"
)

const (
	// ApproachFuzzy selects the typo-tolerant matching strategy.
	ApproachFuzzy = "fuzzy"
	// ApproachPrecise selects the exact-token matching strategy.
	ApproachPrecise = "precise"

	// SearchTermPlaceholder is replaced by the escaped query in search engine URL templates.
	SearchTermPlaceholder = "$s"
)

// Options is the complete, user-overridable configuration.
type Options struct {
	Search        SearchOptions          `json:"search" yaml:"search"`
	Score         ScoreOptions           `json:"score" yaml:"score"`
	History       HistoryOptions         `json:"history" yaml:"history"`
	SearchEngines []SearchEngineTemplate `json:"searchEngines" yaml:"searchEngines"`
}

// SearchOptions controls tokenizing and candidate matching.
type SearchOptions struct {
	Approach           string  `json:"approach" yaml:"approach"`                     // "fuzzy" or "precise"
	MaxResults         int     `json:"maxResults" yaml:"maxResults"`                 // Cap on merged result count (tag/folder-only searches are exempt)
	MinMatchCharLength int     `json:"minMatchCharLength" yaml:"minMatchCharLength"` // Shorter terms are not matched
	Fuzzyness          float64 `json:"fuzzyness" yaml:"fuzzyness"`                   // 0 = exact only, 1 = maximally permissive
}

// ScoreOptions holds the weights, bonuses and base scores of the ranking.
type ScoreOptions struct {
	BookmarkBaseScore     float64 `json:"bookmarkBaseScore" yaml:"bookmarkBaseScore"`
	TabBaseScore          float64 `json:"tabBaseScore" yaml:"tabBaseScore"`
	HistoryBaseScore      float64 `json:"historyBaseScore" yaml:"historyBaseScore"`
	SearchEngineBaseScore float64 `json:"searchEngineBaseScore" yaml:"searchEngineBaseScore"`

	TitleWeight  float64 `json:"titleWeight" yaml:"titleWeight"`
	TagWeight    float64 `json:"tagWeight" yaml:"tagWeight"`
	URLWeight    float64 `json:"urlWeight" yaml:"urlWeight"`
	FolderWeight float64 `json:"folderWeight" yaml:"folderWeight"`

	ExactIncludesBonus    float64 `json:"exactIncludesBonus" yaml:"exactIncludesBonus"`
	ExactStartsWithBonus  float64 `json:"exactStartsWithBonus" yaml:"exactStartsWithBonus"`
	ExactEqualsBonus      float64 `json:"exactEqualsBonus" yaml:"exactEqualsBonus"`
	ExactTagMatchBonus    float64 `json:"exactTagMatchBonus" yaml:"exactTagMatchBonus"`
	ExactFolderMatchBonus float64 `json:"exactFolderMatchBonus" yaml:"exactFolderMatchBonus"`

	VisitedBonusScore        float64 `json:"visitedBonusScore" yaml:"visitedBonusScore"`
	VisitedBonusScoreMaximum float64 `json:"visitedBonusScoreMaximum" yaml:"visitedBonusScoreMaximum"`

	MinScore                float64 `json:"minScore" yaml:"minScore"`                               // Results below this score are dropped
	MinSearchTermMatchRatio float64 `json:"minSearchTermMatchRatio" yaml:"minSearchTermMatchRatio"` // Precise strategy only
}

// HistoryOptions bounds what the history reader loads.
type HistoryOptions struct {
	DaysAgo  int `json:"daysAgo" yaml:"daysAgo"`
	MaxItems int `json:"maxItems" yaml:"maxItems"`
}

// SearchEngineTemplate is a configured search engine. "$s" in URLTemplate is
// replaced by the URL-escaped raw query.
type SearchEngineTemplate struct {
	Name        string `json:"name" yaml:"name"`
	URLTemplate string `json:"urlTemplate" yaml:"urlTemplate"`
}

// DefaultOptions returns a fresh copy of the hardcoded defaults.
func DefaultOptions() Options {
	return Options{
		Search: SearchOptions{
			Approach:           ApproachPrecise,
			MaxResults:         50,
			MinMatchCharLength: 2,
			Fuzzyness:          0.25,
		},
		Score: ScoreOptions{
			BookmarkBaseScore:     100,
			TabBaseScore:          90,
			HistoryBaseScore:      50,
			SearchEngineBaseScore: 30,

			TitleWeight:  10,
			TagWeight:    7,
			URLWeight:    6,
			FolderWeight: 5,

			ExactIncludesBonus:    5,
			ExactStartsWithBonus:  10,
			ExactEqualsBonus:      20,
			ExactTagMatchBonus:    15,
			ExactFolderMatchBonus: 10,

			VisitedBonusScore:        1,
			VisitedBonusScoreMaximum: 20,

			MinScore:                30,
			MinSearchTermMatchRatio: 0.6,
		},
		History: HistoryOptions{
			DaysAgo:  14,
			MaxItems: 1000,
		},
		SearchEngines: []SearchEngineTemplate{
			{Name: "Google", URLTemplate: "https://www.google.com/search?q=$s"},
			{Name: "DuckDuckGo", URLTemplate: "https://duckduckgo.com/?q=$s"},
		},
	}
}

// BaseScore returns the configured base score for an entity type.
func (s ScoreOptions) BaseScore(t model.EntityType) float64 {
	switch t {
	case model.EntityTypeBookmark:
		return s.BookmarkBaseScore
	case model.EntityTypeTab:
		return s.TabBaseScore
	case model.EntityTypeHistory:
		return s.HistoryBaseScore
	case model.EntityTypeSearchEngine:
		return s.SearchEngineBaseScore
	default:
		return 0
	}
}

// FieldWeight returns the configured weight for a matched field.
func (s ScoreOptions) FieldWeight(f model.Field) float64 {
	switch f {
	case model.FieldTitle:
		return s.TitleWeight
	case model.FieldTag:
		return s.TagWeight
	case model.FieldURL:
		return s.URLWeight
	case model.FieldFolder:
		return s.FolderWeight
	default:
		return 0
	}
}

// Validate checks option values and returns every problem found.
func (o *Options) Validate() []string {
	var problems []string

	if o.Search.Approach != ApproachFuzzy && o.Search.Approach != ApproachPrecise {
		problems = append(problems, fmt.Sprintf("search.approach must be '%s' or '%s', got '%s'", ApproachFuzzy, ApproachPrecise, o.Search.Approach))
	}
	if o.Search.MaxResults < 1 {
		problems = append(problems, "search.maxResults must be at least 1")
	}
	if o.Search.MinMatchCharLength < 1 {
		problems = append(problems, "search.minMatchCharLength must be at least 1")
	}
	problems = append(problems, checkUnitRange("search.fuzzyness", o.Search.Fuzzyness)...)
	problems = append(problems, checkUnitRange("score.minSearchTermMatchRatio", o.Score.MinSearchTermMatchRatio)...)

	nonNegative := []struct {
		key   string
		value float64
	}{
		{"score.bookmarkBaseScore", o.Score.BookmarkBaseScore},
		{"score.tabBaseScore", o.Score.TabBaseScore},
		{"score.historyBaseScore", o.Score.HistoryBaseScore},
		{"score.searchEngineBaseScore", o.Score.SearchEngineBaseScore},
		{"score.titleWeight", o.Score.TitleWeight},
		{"score.tagWeight", o.Score.TagWeight},
		{"score.urlWeight", o.Score.URLWeight},
		{"score.folderWeight", o.Score.FolderWeight},
		{"score.exactIncludesBonus", o.Score.ExactIncludesBonus},
		{"score.exactStartsWithBonus", o.Score.ExactStartsWithBonus},
		{"score.exactEqualsBonus", o.Score.ExactEqualsBonus},
		{"score.exactTagMatchBonus", o.Score.ExactTagMatchBonus},
		{"score.exactFolderMatchBonus", o.Score.ExactFolderMatchBonus},
		{"score.visitedBonusScore", o.Score.VisitedBonusScore},
		{"score.visitedBonusScoreMaximum", o.Score.VisitedBonusScoreMaximum},
		{"score.minScore", o.Score.MinScore},
	}
	for _, nn := range nonNegative {
		if nn.value < 0 {
			problems = append(problems, nn.key+" must not be negative")
		}
	}

	if o.History.DaysAgo < 0 {
		problems = append(problems, "history.daysAgo must not be negative")
	}
	if o.History.MaxItems < 0 {
		problems = append(problems, "history.maxItems must not be negative")
	}

	seen := make(map[string]bool)
	for i, engine := range o.SearchEngines {
		if engine.Name == "" {
			problems = append(problems, fmt.Sprintf("searchEngines[%d].name must not be empty", i))
		} else if seen[engine.Name] {
			problems = append(problems, "Duplicate search engine '"+engine.Name+"' found in searchEngines")
		}
		seen[engine.Name] = true
		if engine.URLTemplate == "" {
			problems = append(problems, fmt.Sprintf("searchEngines[%d].urlTemplate must not be empty", i))
		}
	}

	return problems
}

func checkUnitRange(key string, value float64) []string {
	if value < 0 || value > 1 {
		return []string{fmt.Sprintf("%s must be between 0 and 1, got %g", key, value)}
	}
	return nil
}

package search

import (
	"sort"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/model"
)

// Aggregate merges per-type result sets in the given order, drops results
// below score.minScore, sorts by score (descending) then type priority, and
// caps the list at search.maxResults unless the query is tag/folder-only.
// The sort is stable, so equal results keep their discovery order. Results
// for the same URL from different types are all kept.
func Aggregate(sets [][]model.ScoredResult, terms model.QueryTerms, opts config.Options) []model.ScoredResult {
	total := 0
	for _, set := range sets {
		total += len(set)
	}

	merged := make([]model.ScoredResult, 0, total)
	for _, set := range sets {
		for _, r := range set {
			if r.Score < opts.Score.MinScore {
				continue
			}
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Entity.Type.Priority() < merged[j].Entity.Type.Priority()
	})

	if !terms.IsTagOrFolderOnly() && opts.Search.MaxResults > 0 && len(merged) > opts.Search.MaxResults {
		merged = merged[:opts.Search.MaxResults]
	}
	return merged
}

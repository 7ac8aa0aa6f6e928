// Package score computes the relevance of one entity for one query.
//
// A score depends only on the entity, the query terms and the score options,
// never on other results or on earlier searches:
//
//	score = baseScore(type)
//	      + Σ fieldWeight(match.field)           one per FieldMatch
//	      + exactIncludesBonus                   any field contains the raw query
//	      + exactStartsWithBonus                 title or url starts with the raw query
//	      + exactEqualsBonus                     title equals the raw query
//	      + exactTagMatchBonus    × tag terms equal to "#"+tag
//	      + exactFolderMatchBonus × folder terms equal to "~"+folder
//	      + min(visitCount × visitedBonusScore, visitedBonusScoreMaximum)
package score

import (
	"math"
	"strings"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
)

// Scorer applies the score options. It holds no per-search state and is safe
// for concurrent use.
type Scorer struct {
	opts config.ScoreOptions
}

// New creates a scorer for the given options.
func New(opts config.ScoreOptions) *Scorer {
	return &Scorer{opts: opts}
}

// Score returns the score of a matched entity. ok is false when there is no
// match evidence, in which case the entity is not a result.
func (s *Scorer) Score(e model.SearchableEntity, terms model.QueryTerms, matches []model.FieldMatch) (score float64, ok bool) {
	if len(matches) == 0 {
		return 0, false
	}

	score = s.opts.BaseScore(e.Type)
	for _, m := range matches {
		score += s.opts.FieldWeight(m.Field)
	}

	score += s.exactBonus(e, tokenizer.Normalize(strings.TrimSpace(terms.RawQuery)))
	score += s.opts.ExactTagMatchBonus * float64(exactTagMatches(e, terms.TagTerms))
	score += s.opts.ExactFolderMatchBonus * float64(exactFolderMatches(e, terms.FolderTerms))
	score += s.VisitBonus(e)

	return score, true
}

// SearchEngine returns the score of a synthesized search engine entry: its
// base score, with no field or bonus contributions.
func (s *Scorer) SearchEngine(e model.SearchableEntity) float64 {
	return s.opts.BaseScore(e.Type)
}

// VisitBonus returns the capped visit bonus, or 0 for types that do not track visits.
func (s *Scorer) VisitBonus(e model.SearchableEntity) float64 {
	if !e.Type.TracksVisits() || e.VisitCount <= 0 {
		return 0
	}
	return math.Min(float64(e.VisitCount)*s.opts.VisitedBonusScore, s.opts.VisitedBonusScoreMaximum)
}

// exactBonus sums the includes, startsWith and equals bonuses for the full raw query.
func (s *Scorer) exactBonus(e model.SearchableEntity, query string) float64 {
	if query == "" {
		return 0
	}

	title := tokenizer.Normalize(strings.TrimSpace(e.Title))
	rawURL := tokenizer.Normalize(strings.TrimSpace(e.URL))
	url := tokenizer.NormalizeURL(e.URL)

	bonus := 0.0
	if containsQuery(e, title, rawURL, query) {
		bonus += s.opts.ExactIncludesBonus
	}
	if strings.HasPrefix(title, query) || strings.HasPrefix(url, query) || strings.HasPrefix(rawURL, query) {
		bonus += s.opts.ExactStartsWithBonus
	}
	if title == query {
		bonus += s.opts.ExactEqualsBonus
	}
	return bonus
}

func containsQuery(e model.SearchableEntity, title, url, query string) bool {
	if strings.Contains(title, query) || strings.Contains(url, query) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(model.TagMarker+tokenizer.Normalize(tag), query) {
			return true
		}
	}
	for _, folder := range e.FolderPath {
		if strings.Contains(model.FolderMarker+tokenizer.Normalize(folder), query) {
			return true
		}
	}
	return false
}

// exactTagMatches counts tag terms (with marker) equal to "#"+tag for some entity tag.
func exactTagMatches(e model.SearchableEntity, tagTerms []string) int {
	count := 0
	for _, term := range tagTerms {
		for _, tag := range e.Tags {
			if term == model.TagMarker+tokenizer.Normalize(tag) {
				count++
				break
			}
		}
	}
	return count
}

// exactFolderMatches counts folder terms (with marker) equal to "~"+segment for some folder.
func exactFolderMatches(e model.SearchableEntity, folderTerms []string) int {
	count := 0
	for _, term := range folderTerms {
		for _, folder := range e.FolderPath {
			if term == model.FolderMarker+tokenizer.Normalize(folder) {
				count++
				break
			}
		}
	}
	return count
}

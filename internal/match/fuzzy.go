package match

import (
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/typoutil"
	"github.com/gcbaptista/go-browser-search/model"
)

// FuzzyMatcher tolerates typos. A term that does not occur literally in a field
// still matches (as fuzzyApprox) when a word of the field is within the edit
// budget, or when the term's characters appear in order in a value within a
// span of at most len(term)+budget characters.
type FuzzyMatcher struct {
	fuzzyness float64
}

// NewFuzzyMatcher creates a fuzzy matcher. fuzzyness 0 only allows exact kinds.
func NewFuzzyMatcher(fuzzyness float64) *FuzzyMatcher {
	return &FuzzyMatcher{fuzzyness: fuzzyness}
}

func (m *FuzzyMatcher) Approach() string { return config.ApproachFuzzy }

func (m *FuzzyMatcher) Close() error { return nil }

// LocateCandidates returns every entity with at least one field match, in
// entity order. The term match ratio is not enforced by this strategy.
func (m *FuzzyMatcher) LocateCandidates(entities []model.SearchableEntity, terms model.QueryTerms) []model.Candidate {
	scoped := terms.ScopedTerms()
	if len(scoped) == 0 {
		return []model.Candidate{}
	}

	budgets := make([]int, len(scoped))
	for i, st := range scoped {
		budgets[i] = typoutil.EditBudget(m.fuzzyness, st.Term)
	}

	candidates := make([]model.Candidate, 0)
	for i := range entities {
		candidate, ok := evaluateSafely(m.Approach(), entities[i], func() (model.Candidate, bool) {
			return m.evaluate(i, entities[i], scoped, budgets)
		})
		if ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func (m *FuzzyMatcher) evaluate(index int, e model.SearchableEntity, scoped []model.ScopedTerm, budgets []int) (model.Candidate, bool) {
	text := newEntityText(e)
	candidate := model.Candidate{Index: index}

	for i, st := range scoped {
		termMatched := false
		for _, field := range st.Fields {
			kind := fuzzyKind(text[field], st.Term, budgets[i])
			if kind == "" {
				continue
			}
			candidate.Matches = append(candidate.Matches, model.FieldMatch{Field: field, Term: st.Term, Kind: kind})
			termMatched = true
		}
		if termMatched {
			candidate.MatchedTerms++
		}
	}

	return candidate, len(candidate.Matches) > 0
}

// fuzzyKind returns the strongest kind of term in the field, trying exact
// kinds before approximate ones.
func fuzzyKind(ft fieldText, term string, budget int) model.MatchKind {
	if len(ft.values) == 0 {
		return ""
	}
	if kind := ft.exactKind(term); kind != "" {
		return kind
	}
	if budget <= 0 {
		return ""
	}

	if _, _, ok := typoutil.ClosestWord(term, ft.words, budget); ok {
		return model.MatchFuzzyApprox
	}

	maxSpan := utf8.RuneCountInString(term) + budget
	for _, match := range fuzzy.Find(term, ft.values) {
		if matchSpan(ft.values[match.Index], match.MatchedIndexes) <= maxSpan {
			return model.MatchFuzzyApprox
		}
	}
	return ""
}

// matchSpan returns how many characters of value lie between the first and
// last matched index, inclusive. Indexes are byte offsets into value.
func matchSpan(value string, indexes []int) int {
	if len(indexes) == 0 {
		return 0
	}
	first, last := indexes[0], indexes[len(indexes)-1]
	if first < 0 || last >= len(value) || first > last {
		return last - first + 1
	}
	return utf8.RuneCountInString(value[first:last]) + 1
}

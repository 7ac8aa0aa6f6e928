package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
)

func defaultScorer() *Scorer {
	return New(config.DefaultOptions().Score)
}

func TestScore_NoMatchesIsNotAResult(t *testing.T) {
	e := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "inbox"}
	_, ok := defaultScorer().Score(e, tokenizer.ParseQuery("inbox", 2), nil)
	assert.False(t, ok)
}

func TestScore_Formula(t *testing.T) {
	s := defaultScorer()

	tests := []struct {
		name    string
		entity  model.SearchableEntity
		query   string
		matches []model.FieldMatch
		want    float64
	}{
		{
			name:    "title equals query",
			entity:  model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Inbox", URL: "https://mail.example.com"},
			query:   "inbox",
			matches: []model.FieldMatch{{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchExactEquals}},
			want:    100 + 10 + 5 + 10 + 20,
		},
		{
			name:   "url starts with query",
			entity: model.SearchableEntity{Type: model.EntityTypeTab, Title: "Mail", URL: "https://www.mail.example.com"},
			query:  "mail.example",
			matches: []model.FieldMatch{
				{Field: model.FieldURL, Term: "mail.example", Kind: model.MatchStartsWith},
			},
			want: 90 + 6 + 5 + 10,
		},
		{
			name:   "substring only",
			entity: model.SearchableEntity{Type: model.EntityTypeHistory, Title: "Weekly inbox review"},
			query:  "inbox",
			matches: []model.FieldMatch{
				{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchExactEquals},
			},
			want: 50 + 10 + 5,
		},
		{
			name:   "one weight per field match",
			entity: model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Go docs", URL: "https://go.dev/doc", FolderPath: []string{"Dev"}},
			query:  "go dev",
			matches: []model.FieldMatch{
				{Field: model.FieldTitle, Term: "go", Kind: model.MatchExactEquals},
				{Field: model.FieldURL, Term: "go", Kind: model.MatchStartsWith},
				{Field: model.FieldURL, Term: "dev", Kind: model.MatchExactEquals},
				{Field: model.FieldFolder, Term: "dev", Kind: model.MatchExactEquals},
			},
			want: 100 + 10 + 6 + 6 + 5,
		},
		{
			name:   "fuzzy match gets the field weight without exact bonuses",
			entity: model.SearchableEntity{Type: model.EntityTypeTab, Title: "GitHub"},
			query:  "githib",
			matches: []model.FieldMatch{
				{Field: model.FieldTitle, Term: "githib", Kind: model.MatchFuzzyApprox},
			},
			want: 90 + 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Score(tt.entity, tokenizer.ParseQuery(tt.query, 2), tt.matches)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_ExactBonusesUseNormalizedQuery(t *testing.T) {
	s := defaultScorer()
	entity := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Inbox", URL: "https://mail.example.com"}
	matches := []model.FieldMatch{{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchExactEquals}}

	for _, query := range []string{"inbox", "INBOX", "  inbox  ", "Ｉｎｂｏｘ"} {
		got, ok := s.Score(entity, tokenizer.ParseQuery(query, 2), matches)
		require.True(t, ok)
		assert.Equal(t, 145.0, got, "query %q", query)
	}
}

func TestScore_VisitBonus(t *testing.T) {
	s := defaultScorer()

	assert.Equal(t, 5.0, s.VisitBonus(model.SearchableEntity{Type: model.EntityTypeHistory, VisitCount: 5}))
	assert.Equal(t, 20.0, s.VisitBonus(model.SearchableEntity{Type: model.EntityTypeHistory, VisitCount: 500}))
	assert.Equal(t, 3.0, s.VisitBonus(model.SearchableEntity{Type: model.EntityTypeTab, VisitCount: 3}))
	assert.Equal(t, 0.0, s.VisitBonus(model.SearchableEntity{Type: model.EntityTypeSearchEngine, VisitCount: 50}))
	assert.Equal(t, 0.0, s.VisitBonus(model.SearchableEntity{Type: model.EntityTypeBookmark}))
}

func TestScore_ExactTitleOutranksVisitedHistory(t *testing.T) {
	s := defaultScorer()
	terms := tokenizer.ParseQuery("inbox", 2)

	bookmark := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "inbox", Tags: []string{"work"}}
	history := model.SearchableEntity{Type: model.EntityTypeHistory, Title: "inbox rules", VisitCount: 5}

	bookmarkScore, ok := s.Score(bookmark, terms, []model.FieldMatch{{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchExactEquals}})
	require.True(t, ok)
	historyScore, ok := s.Score(history, terms, []model.FieldMatch{{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchExactEquals}})
	require.True(t, ok)

	assert.Equal(t, 145.0, bookmarkScore)
	assert.Equal(t, 80.0, historyScore)
	assert.Greater(t, bookmarkScore, historyScore)
}

func TestScore_TagBonusRequiresExactTag(t *testing.T) {
	s := defaultScorer()
	terms := tokenizer.ParseQuery("#work", 2)
	match := []model.FieldMatch{{Field: model.FieldTag, Term: "work"}}

	work := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Notes", Tags: []string{"work"}}
	workflow := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Notes", Tags: []string{"workflow"}}

	workScore, ok := s.Score(work, terms, match)
	require.True(t, ok)
	workflowScore, ok := s.Score(workflow, terms, match)
	require.True(t, ok)

	// Both contain "#work" as a substring; only the exact tag earns the tag bonus
	assert.Equal(t, 100.0+7+5+15, workScore)
	assert.Equal(t, 100.0+7+5, workflowScore)
}

func TestScore_FolderBonusPerTerm(t *testing.T) {
	s := defaultScorer()
	terms := tokenizer.ParseQuery("~work ~dev", 2)
	e := model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Go", FolderPath: []string{"Work", "Dev"}}
	matches := []model.FieldMatch{
		{Field: model.FieldFolder, Term: "work", Kind: model.MatchExactEquals},
		{Field: model.FieldFolder, Term: "dev", Kind: model.MatchExactEquals},
	}

	got, ok := s.Score(e, terms, matches)
	require.True(t, ok)
	assert.Equal(t, 100.0+5+5+10+10, got)
}

func TestScore_SearchEngineIsBaseScoreOnly(t *testing.T) {
	e := model.SearchableEntity{Type: model.EntityTypeSearchEngine, Title: "Google", VisitCount: 10}
	assert.Equal(t, 30.0, defaultScorer().SearchEngine(e))
}

func TestScore_Deterministic(t *testing.T) {
	s := defaultScorer()
	e := model.SearchableEntity{Type: model.EntityTypeHistory, Title: "inbox rules", URL: "https://mail.example.com", VisitCount: 7}
	terms := tokenizer.ParseQuery("inbox", 2)
	matches := []model.FieldMatch{{Field: model.FieldTitle, Term: "inbox", Kind: model.MatchStartsWith}}

	first, _ := s.Score(e, terms, matches)
	for i := 0; i < 10; i++ {
		_, _ = s.Score(model.SearchableEntity{Type: model.EntityTypeTab, Title: "other"}, tokenizer.ParseQuery("other", 2),
			[]model.FieldMatch{{Field: model.FieldTitle, Term: "other"}})
		again, _ := s.Score(e, terms, matches)
		assert.Equal(t, first, again)
	}
}

func TestScore_TitleWeightMonotonic(t *testing.T) {
	entities := []struct {
		entity  model.SearchableEntity
		matches []model.FieldMatch
	}{
		{
			model.SearchableEntity{Type: model.EntityTypeBookmark, Title: "Inbox", Tags: []string{"work"}},
			[]model.FieldMatch{{Field: model.FieldTitle, Term: "inbox"}, {Field: model.FieldTag, Term: "inbox"}},
		},
		{
			model.SearchableEntity{Type: model.EntityTypeHistory, Title: "Mail", URL: "https://inbox.example.com", VisitCount: 30},
			[]model.FieldMatch{{Field: model.FieldURL, Term: "inbox"}},
		},
		{
			model.SearchableEntity{Type: model.EntityTypeTab, Title: "Inbox rules", FolderPath: []string{"Inbox"}},
			[]model.FieldMatch{{Field: model.FieldTitle, Term: "inbox"}, {Field: model.FieldFolder, Term: "inbox"}},
		},
	}
	terms := tokenizer.ParseQuery("inbox", 2)

	for _, weight := range []float64{0, 1, 10, 25, 100} {
		low := config.DefaultOptions().Score
		low.TitleWeight = weight
		high := low
		high.TitleWeight = weight + 5

		for _, tc := range entities {
			lowScore, _ := New(low).Score(tc.entity, terms, tc.matches)
			highScore, _ := New(high).Score(tc.entity, terms, tc.matches)

			hasTitleMatch := false
			for _, m := range tc.matches {
				if m.Field == model.FieldTitle {
					hasTitleMatch = true
				}
			}
			if hasTitleMatch {
				assert.GreaterOrEqual(t, highScore, lowScore)
			} else {
				assert.Equal(t, lowScore, highScore)
			}
		}
	}
}

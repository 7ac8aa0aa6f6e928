package search

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/match"
	"github.com/gcbaptista/go-browser-search/internal/normalize"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
	"github.com/gcbaptista/go-browser-search/store"
)

// --- Test Helpers ---

func sampleEntities() []model.SearchableEntity {
	return []model.SearchableEntity{
		{ID: "bookmark-1", Type: model.EntityTypeBookmark, Title: "inbox", URL: "https://mail.example.com", Tags: []string{"work"}},
		{ID: "bookmark-2", Type: model.EntityTypeBookmark, Title: "Team wiki", URL: "https://wiki.example.com", Tags: []string{"workflow"}},
		{ID: "tab-1", Type: model.EntityTypeTab, Title: "Mail", URL: "https://mail.example.com"},
		{ID: "history-1", Type: model.EntityTypeHistory, Title: "inbox rules", URL: "https://mail.example.com/rules", VisitCount: 5},
	}
}

func setupTestSearchService(t *testing.T, entities []model.SearchableEntity, mutate func(*config.Options)) *Service {
	t.Helper()
	opts := config.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}

	snapshot := store.NewSnapshot(entities, normalize.SearchEngines(opts.SearchEngines))
	matcher, err := match.New(opts, snapshot.Entities)
	require.NoError(t, err)
	t.Cleanup(func() { _ = matcher.Close() })

	service, err := NewService(snapshot, matcher, opts)
	require.NoError(t, err)
	return service
}

func hitIDs(hits []model.ScoredResult) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Entity.ID)
	}
	return ids
}

// --- Test Cases ---

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, match.NewFuzzyMatcher(0), config.DefaultOptions())
	assert.Error(t, err)

	_, err = NewService(store.NewSnapshot(nil, nil), nil, config.DefaultOptions())
	assert.Error(t, err)
}

func TestSearch_EmptyQueryIsInactive(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		result, err := service.Search(services.SearchQuery{QueryString: q})
		require.NoError(t, err)
		assert.False(t, result.Active)
		assert.Empty(t, result.Hits)
		assert.NotNil(t, result.Hits)
		assert.Equal(t, 0, result.Total)
	}
}

func TestSearch_ExactTitleBookmarkOutranksVisitedHistory(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.Search(services.SearchQuery{QueryString: "inbox"})
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.NotEmpty(t, result.QueryId)
	assert.Equal(t, config.ApproachPrecise, result.Approach)

	assert.Equal(t, []string{"bookmark-1", "history-1", "se-google", "se-duckduckgo"}, hitIDs(result.Hits))
	assert.Equal(t, 145.0, result.Hits[0].Score)
	assert.Equal(t, 80.0, result.Hits[1].Score)
	assert.Equal(t, 30.0, result.Hits[2].Score)
}

func TestSearch_ScoresNeverBelowMinScore(t *testing.T) {
	for _, minScore := range []float64{0, 30, 31, 90, 120, 500} {
		t.Run(fmt.Sprintf("minScore=%v", minScore), func(t *testing.T) {
			service := setupTestSearchService(t, sampleEntities(), func(o *config.Options) {
				o.Score.MinScore = minScore
			})

			for _, q := range []string{"inbox", "mail", "#work", "example", "wiki team"} {
				result, err := service.Search(services.SearchQuery{QueryString: q})
				require.NoError(t, err)
				for _, hit := range result.Hits {
					assert.GreaterOrEqual(t, hit.Score, minScore, "query %q hit %s", q, hit.Entity.ID)
				}
			}
		})
	}
}

func TestSearch_SearchEnginesFillInQuery(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.Search(services.SearchQuery{QueryString: " go docs & more "})
	require.NoError(t, err)

	var engines []model.ScoredResult
	for _, hit := range result.Hits {
		if hit.Entity.Type == model.EntityTypeSearchEngine {
			engines = append(engines, hit)
		}
	}
	require.Len(t, engines, 2)
	assert.Equal(t, "https://www.google.com/search?q=go+docs+%26+more", engines[0].Entity.URL)
	assert.Equal(t, "https://duckduckgo.com/?q=go+docs+%26+more", engines[1].Entity.URL)
	assert.Empty(t, engines[0].MatchedFields)
}

func TestSearch_ShortTermsLeaveOnlySearchEngines(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.Search(services.SearchQuery{QueryString: "a"})
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, []string{"se-google", "se-duckduckgo"}, hitIDs(result.Hits))
}

func TestSearch_NoDeduplicationAcrossTypes(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.Search(services.SearchQuery{QueryString: "mail"})
	require.NoError(t, err)

	// Same URL, both kept
	ids := hitIDs(result.Hits)
	assert.Contains(t, ids, "bookmark-1")
	assert.Contains(t, ids, "tab-1")
	assert.Equal(t, "tab-1", ids[0])
}

func TestSearch_FullRatioExcludesPartialMatch(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), func(o *config.Options) {
		o.Score.MinSearchTermMatchRatio = 1
	})

	result, err := service.Search(services.SearchQuery{QueryString: "inbox rules"})
	require.NoError(t, err)

	// bookmark-1 matches only "inbox" but would score well above minScore
	assert.NotContains(t, hitIDs(result.Hits), "bookmark-1")
	assert.Contains(t, hitIDs(result.Hits), "history-1")
}

func TestSearch_TagQueryBonusOnlyForExactTag(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.Search(services.SearchQuery{QueryString: "#work"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Hits), 2)

	assert.Equal(t, "bookmark-1", result.Hits[0].Entity.ID)
	assert.Equal(t, 100.0+7+5+15, result.Hits[0].Score)
	assert.Equal(t, "bookmark-2", result.Hits[1].Entity.ID)
	assert.Equal(t, 100.0+7+5, result.Hits[1].Score)
}

func TestSearch_CapAndTagOnlyExemption(t *testing.T) {
	entities := make([]model.SearchableEntity, 0, 6)
	for i := 0; i < 6; i++ {
		entities = append(entities, model.SearchableEntity{
			ID:    fmt.Sprintf("bookmark-%d", i),
			Type:  model.EntityTypeBookmark,
			Title: fmt.Sprintf("Report %d", i),
			Tags:  []string{"work"},
		})
	}
	service := setupTestSearchService(t, entities, func(o *config.Options) {
		o.Search.MaxResults = 3
	})

	capped, err := service.Search(services.SearchQuery{QueryString: "report"})
	require.NoError(t, err)
	assert.Len(t, capped.Hits, 3)

	tagOnly, err := service.Search(services.SearchQuery{QueryString: "#work"})
	require.NoError(t, err)
	assert.Len(t, tagOnly.Hits, 6+2)
}

func TestSearch_StableOrderForEqualScores(t *testing.T) {
	entities := []model.SearchableEntity{
		{ID: "tab-c", Type: model.EntityTypeTab, Title: "Docs C"},
		{ID: "tab-a", Type: model.EntityTypeTab, Title: "Docs A"},
		{ID: "tab-b", Type: model.EntityTypeTab, Title: "Docs B"},
	}
	service := setupTestSearchService(t, entities, nil)

	for i := 0; i < 5; i++ {
		result, err := service.Search(services.SearchQuery{QueryString: "docs"})
		require.NoError(t, err)
		assert.Equal(t, []string{"tab-c", "tab-a", "tab-b", "se-google", "se-duckduckgo"}, hitIDs(result.Hits))
	}
}

func TestSearch_FuzzyApproach(t *testing.T) {
	entities := []model.SearchableEntity{
		{ID: "tab-1", Type: model.EntityTypeTab, Title: "GitHub", URL: "https://github.com"},
	}
	service := setupTestSearchService(t, entities, func(o *config.Options) {
		o.Search.Approach = config.ApproachFuzzy
	})

	result, err := service.Search(services.SearchQuery{QueryString: "githib"})
	require.NoError(t, err)
	assert.Equal(t, config.ApproachFuzzy, result.Approach)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "tab-1", result.Hits[0].Entity.ID)
	assert.Equal(t, 90.0+10+6, result.Hits[0].Score)
}

func TestSearch_ConcurrentCallsAreIndependent(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	expected := map[string][]string{}
	queries := []string{"inbox", "mail", "#work", "wiki"}
	for _, q := range queries {
		result, err := service.Search(services.SearchQuery{QueryString: q})
		require.NoError(t, err)
		expected[q] = hitIDs(result.Hits)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, q := range queries {
			wg.Add(1)
			go func(q string) {
				defer wg.Done()
				result, err := service.Search(services.SearchQuery{QueryString: q})
				assert.NoError(t, err)
				assert.Equal(t, expected[q], hitIDs(result.Hits))
			}(q)
		}
	}
	wg.Wait()
}

func TestRank_UsesParsedTerms(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	hits := service.Rank(tokenizer.ParseQuery("inbox", 2))
	assert.Equal(t, "bookmark-1", hits[0].Entity.ID)
	assert.Empty(t, service.Rank(tokenizer.ParseQuery("", 2)))
}

func TestMultiSearch(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)

	result, err := service.MultiSearch(context.Background(), services.MultiSearchQuery{
		Queries: []services.NamedSearchQuery{
			{Name: "mail", Query: "inbox"},
			{Name: "tags", Query: "#work"},
			{Name: "blank", Query: ""},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalQueries)
	assert.Equal(t, "bookmark-1", result.Results["mail"].Hits[0].Entity.ID)
	assert.Equal(t, "bookmark-1", result.Results["tags"].Hits[0].Entity.ID)
	assert.False(t, result.Results["blank"].Active)
}

func TestMultiSearch_InvalidRequests(t *testing.T) {
	service := setupTestSearchService(t, sampleEntities(), nil)
	ctx := context.Background()

	_, err := service.MultiSearch(ctx, services.MultiSearchQuery{})
	assert.Error(t, err)

	_, err = service.MultiSearch(ctx, services.MultiSearchQuery{Queries: []services.NamedSearchQuery{{Query: "inbox"}}})
	assert.Error(t, err)

	_, err = service.MultiSearch(ctx, services.MultiSearchQuery{Queries: []services.NamedSearchQuery{
		{Name: "a", Query: "inbox"}, {Name: "a", Query: "mail"},
	}})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = service.MultiSearch(cancelled, services.MultiSearchQuery{Queries: []services.NamedSearchQuery{{Name: "a", Query: "inbox"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_TypePriorityBreaksTies(t *testing.T) {
	opts := config.DefaultOptions()
	result := func(id string, typ model.EntityType, score float64) model.ScoredResult {
		return model.ScoredResult{Entity: model.SearchableEntity{ID: id, Type: typ}, Score: score}
	}

	merged := Aggregate([][]model.ScoredResult{
		{result("history-1", model.EntityTypeHistory, 60)},
		{result("tab-1", model.EntityTypeTab, 60), result("tab-2", model.EntityTypeTab, 10)},
		{result("bookmark-1", model.EntityTypeBookmark, 60), result("bookmark-2", model.EntityTypeBookmark, 70)},
	}, model.QueryTerms{RawQuery: "x", Terms: []string{"x"}}, opts)

	assert.Equal(t, []string{"bookmark-2", "bookmark-1", "tab-1", "history-1"}, hitIDs(merged))
}

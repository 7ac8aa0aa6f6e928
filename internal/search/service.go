package search

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/score"
	"github.com/gcbaptista/go-browser-search/internal/tokenizer"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
	"github.com/gcbaptista/go-browser-search/store"
)

// Service runs searches against one snapshot with one matcher.
// It will fulfill the services.Searcher interface. A Service never mutates
// its snapshot, so concurrent searches are safe.
type Service struct {
	snapshot *store.Snapshot
	matcher  services.Matcher
	scorer   *score.Scorer
	opts     config.Options
}

// NewService creates a new search Service.
func NewService(snapshot *store.Snapshot, matcher services.Matcher, opts config.Options) (*Service, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if matcher == nil {
		return nil, fmt.Errorf("matcher cannot be nil")
	}

	return &Service{
		snapshot: snapshot,
		matcher:  matcher,
		scorer:   score.New(opts.Score),
		opts:     opts,
	}, nil
}

// Search tokenizes the query, locates and scores candidates and returns the
// merged, filtered and ordered results. A blank query is not an error: it
// yields an inactive result with no hits.
func (s *Service) Search(query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	terms := tokenizer.ParseQuery(query.QueryString, s.opts.Search.MinMatchCharLength)
	hits := s.Rank(terms)

	return services.SearchResult{
		Hits:     hits,
		Total:    len(hits),
		Active:   terms.Active(),
		Approach: s.matcher.Approach(),
		Took:     time.Since(startTime).Milliseconds(),
		QueryId:  uuid.New().String(),
	}, nil
}

// Rank returns the ordered results for already tokenized terms.
func (s *Service) Rank(terms model.QueryTerms) []model.ScoredResult {
	if !terms.Active() {
		return []model.ScoredResult{}
	}

	byType := make(map[model.EntityType][]model.ScoredResult, len(model.EntityTypes))

	if len(terms.Terms) > 0 {
		entities := s.snapshot.Entities
		for _, candidate := range s.matcher.LocateCandidates(entities, terms) {
			if candidate.Index < 0 || candidate.Index >= len(entities) {
				continue
			}
			entity := entities[candidate.Index]
			value, ok := s.scorer.Score(entity, terms, candidate.Matches)
			if !ok {
				continue
			}
			byType[entity.Type] = append(byType[entity.Type], model.ScoredResult{
				Entity:        entity,
				Score:         value,
				MatchedFields: candidate.Matches,
			})
		}
	}

	byType[model.EntityTypeSearchEngine] = s.searchEngineResults(terms)

	sets := make([][]model.ScoredResult, 0, len(model.EntityTypes))
	for _, t := range model.EntityTypes {
		sets = append(sets, byType[t])
	}
	return Aggregate(sets, terms, s.opts)
}

// searchEngineResults synthesizes one result per configured search engine,
// with the raw query filled into its URL template.
func (s *Service) searchEngineResults(terms model.QueryTerms) []model.ScoredResult {
	escaped := url.QueryEscape(strings.TrimSpace(terms.RawQuery))

	results := make([]model.ScoredResult, 0, len(s.snapshot.SearchEngines))
	for _, engine := range s.snapshot.SearchEngines {
		entity := engine
		entity.URL = strings.ReplaceAll(engine.URL, config.SearchTermPlaceholder, escaped)
		results = append(results, model.ScoredResult{
			Entity: entity,
			Score:  s.scorer.SearchEngine(entity),
		})
	}
	return results
}

// Approach returns the active matching strategy.
func (s *Service) Approach() string {
	return s.matcher.Approach()
}

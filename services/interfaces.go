package services

import (
	"context"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/model"
)

// SearchResult is the ordered outcome of one search invocation.
// Active is false for a blank query: the caller shows its default view
// instead of an empty result list.
type SearchResult struct {
	Hits     []model.ScoredResult `json:"hits"`
	Total    int                  `json:"total"`
	Active   bool                 `json:"active"`
	Approach string               `json:"approach"`
	Took     int64                `json:"took"`     // milliseconds
	QueryId  string               `json:"query_id"` // unique UUID for this search query
}

type SearchQuery struct {
	QueryString string `json:"query"`
}

// MultiSearchQuery represents a request to execute multiple named search queries
type MultiSearchQuery struct {
	Queries []NamedSearchQuery `json:"queries"`
}

// NamedSearchQuery represents a single named search query within a multi-search request
type NamedSearchQuery struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// MultiSearchResult represents the response from a multi-search operation
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// Matcher locates candidate entities for a query and reports per-field match
// evidence for each of them. Implementations must be safe for concurrent use.
type Matcher interface {
	LocateCandidates(entities []model.SearchableEntity, terms model.QueryTerms) []model.Candidate
	Approach() string
	Close() error
}

// Searcher defines operations for querying the current snapshot
type Searcher interface {
	Search(query SearchQuery) (SearchResult, error)
}

// MultiSearcher defines operations for performing multiple queries in a single request
type MultiSearcher interface {
	MultiSearch(ctx context.Context, query MultiSearchQuery) (*MultiSearchResult, error)
}

// TabLister reports the currently open tabs.
type TabLister interface {
	ListTabs(ctx context.Context) ([]model.RawTab, error)
}

// BookmarkReader reads the bookmark tree, flattened to leaves.
type BookmarkReader interface {
	ReadBookmarks(ctx context.Context) ([]model.RawBookmark, error)
}

// HistoryReader reads recent history, bounded by the history options.
type HistoryReader interface {
	ReadHistory(ctx context.Context, opts config.HistoryOptions) ([]model.RawHistoryItem, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
}

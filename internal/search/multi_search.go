package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-browser-search/services"
)

// MultiSearch runs several named queries concurrently against the same
// snapshot. Query names must be unique and non-empty.
func (s *Service) MultiSearch(ctx context.Context, multiQuery services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	startTime := time.Now()

	if len(multiQuery.Queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}
	seen := make(map[string]bool, len(multiQuery.Queries))
	for _, nq := range multiQuery.Queries {
		if nq.Name == "" {
			return nil, fmt.Errorf("each query must have a non-empty name")
		}
		if seen[nq.Name] {
			return nil, fmt.Errorf("duplicate query name '%s'", nq.Name)
		}
		seen[nq.Name] = true
	}

	var mu sync.Mutex
	results := make(map[string]services.SearchResult, len(multiQuery.Queries))

	g, gctx := errgroup.WithContext(ctx)
	for _, nq := range multiQuery.Queries {
		nq := nq
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("multi-search cancelled: %w", err)
			}
			result, err := s.Search(services.SearchQuery{QueryString: nq.Query})
			if err != nil {
				return fmt.Errorf("error executing query '%s': %w", nq.Name, err)
			}
			mu.Lock()
			results[nq.Name] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &services.MultiSearchResult{
		Results:          results,
		TotalQueries:     len(multiQuery.Queries),
		ProcessingTimeMs: float64(time.Since(startTime).Nanoseconds()) / 1e6,
	}, nil
}

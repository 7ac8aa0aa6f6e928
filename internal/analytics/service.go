// Package analytics records search events and summarizes them.
package analytics

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gcbaptista/go-browser-search/model"
)

const (
	maxEventsToKeep    = 10000
	popularSearchLimit = 5
)

// Service keeps the most recent search events in memory. When a data path is
// set, Flush writes them to disk and NewService reads them back.
type Service struct {
	mu       sync.RWMutex
	events   []model.SearchEvent
	dataPath string
	dirty    bool
	now      func() time.Time
}

// NewService creates an analytics service. An empty dataPath keeps events in
// memory only.
func NewService(dataPath string) *Service {
	s := &Service{
		events:   make([]model.SearchEvent, 0),
		dataPath: dataPath,
		now:      time.Now,
	}
	if err := s.load(); err != nil {
		log.Printf("Warning: Failed to load analytics data: %v", err)
	}
	return s
}

// Track records a search event, stamping it with the current time.
func (s *Service) Track(event model.SearchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.Timestamp = s.now()
	s.events = append(s.events, event)
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.dirty = true
}

// Count returns the number of retained events.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Summary aggregates every retained event. snapshotEntities is reported as is.
func (s *Service) Summary(snapshotEntities int) model.AnalyticsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := model.AnalyticsSummary{
		TotalSearches:      len(s.events),
		SearchesByApproach: make(map[string]int),
		PopularSearches:    make([]model.PopularSearch, 0),
		SnapshotEntities:   snapshotEntities,
	}

	var total time.Duration
	queryCounts := make(map[string]int)
	for _, event := range s.events {
		total += event.ResponseTime
		summary.SearchesByApproach[event.Approach]++
		addToDistribution(&summary.ResponseTimeDistribution, event.ResponseTime)

		if !event.Active {
			continue
		}
		summary.ActiveSearches++
		if event.ResultCount == 0 {
			summary.EmptyResultSearches++
		}
		if q := strings.ToLower(strings.TrimSpace(event.Query)); q != "" {
			queryCounts[q]++
		}
	}

	if len(s.events) > 0 {
		summary.AvgResponseTime = float64(total.Microseconds()) / float64(len(s.events)) / 1000
	}
	summary.PopularSearches = popularSearches(queryCounts, popularSearchLimit)
	return summary
}

func addToDistribution(dist *model.ResponseTimeDistribution, d time.Duration) {
	switch {
	case d <= 5*time.Millisecond:
		dist.Bucket0To5ms++
	case d <= 25*time.Millisecond:
		dist.Bucket5To25ms++
	case d <= 100*time.Millisecond:
		dist.Bucket25To100ms++
	default:
		dist.Bucket100msPlus++
	}
}

// popularSearches returns the most frequent queries, ties broken alphabetically.
func popularSearches(counts map[string]int, limit int) []model.PopularSearch {
	popular := make([]model.PopularSearch, 0, len(counts))
	for q, c := range counts {
		popular = append(popular, model.PopularSearch{Query: q, SearchCount: c})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})
	if len(popular) > limit {
		popular = popular[:limit]
	}
	return popular
}

// Flush writes the events to the data path if anything changed since the
// last flush.
func (s *Service) Flush() error {
	if s.dataPath == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.dataPath), 0755); err != nil {
		return fmt.Errorf("failed to create analytics directory: %w", err)
	}
	data, err := json.MarshalIndent(s.events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}
	tmp := s.dataPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write analytics file: %w", err)
	}
	if err := os.Rename(tmp, s.dataPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace analytics file: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *Service) load() error {
	if s.dataPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.dataPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read analytics file: %w", err)
	}

	var events []model.SearchEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to unmarshal analytics data: %w", err)
	}
	if len(events) > maxEventsToKeep {
		events = events[len(events)-maxEventsToKeep:]
	}
	s.events = events
	return nil
}

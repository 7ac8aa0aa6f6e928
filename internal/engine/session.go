// Package engine owns one search session: the effective options, the current
// snapshot with its matcher, and the background work that replaces them.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/analytics"
	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/internal/jobs"
	"github.com/gcbaptista/go-browser-search/internal/match"
	"github.com/gcbaptista/go-browser-search/internal/normalize"
	"github.com/gcbaptista/go-browser-search/internal/persistence"
	"github.com/gcbaptista/go-browser-search/internal/search"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
	"github.com/gcbaptista/go-browser-search/store"
)

const (
	dataDirPerm   = 0755
	snapshotFile  = "snapshot.gob"
	analyticsFile = "analytics.json"
	jobWorkers    = 1
)

// loaded is everything a search needs. It is replaced as a whole.
type loaded struct {
	snapshot *store.Snapshot
	matcher  services.Matcher
	searcher *search.Service
}

// Stats describes the current snapshot of a session.
type Stats struct {
	Loaded   bool   `json:"loaded"`
	Approach string `json:"approach"`
	store.Stats
}

// Session serves searches against the latest snapshot. A reload builds the
// new snapshot without blocking searches and swaps it in atomically; a search
// always sees exactly one snapshot from start to end.
type Session struct {
	opts    config.Options
	sources normalize.Sources
	dataDir string

	mu      sync.RWMutex
	current *loaded

	reloadMu sync.Mutex

	jobs      *jobs.Manager
	analytics *analytics.Service
}

// NewSession creates a session with no snapshot loaded. An empty dataDir
// disables the snapshot cache and analytics persistence.
func NewSession(opts config.Options, sources normalize.Sources, dataDir string) (*Session, error) {
	if problems := opts.Validate(); len(problems) > 0 {
		return nil, internalErrors.NewConfigProblemsError(problems)
	}

	analyticsPath := ""
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
			log.Printf("Warning: Could not create data directory %s: %v. Proceeding without persistence.", dataDir, err)
			dataDir = ""
		} else {
			analyticsPath = filepath.Join(dataDir, analyticsFile)
		}
	}

	manager := jobs.NewManager(jobWorkers)
	manager.Start()

	return &Session{
		opts:      opts,
		sources:   sources,
		dataDir:   dataDir,
		jobs:      manager,
		analytics: analytics.NewService(analyticsPath),
	}, nil
}

// Options returns the effective options of the session.
func (s *Session) Options() config.Options {
	return s.opts
}

// Jobs returns the job manager running the session's background work.
func (s *Session) Jobs() *jobs.Manager {
	return s.jobs
}

// Reload reads every source, builds a new snapshot and swaps it in.
// On failure the previous snapshot stays in place.
func (s *Session) Reload(ctx context.Context) (Stats, error) {
	return s.reload(ctx, func(int, int, string) {})
}

// ReloadAsync starts a reload in the background and returns its job ID.
func (s *Session) ReloadAsync() (string, error) {
	jobID, err := s.jobs.Submit(model.JobTypeReloadSnapshot, map[string]string{"operation": "reload_snapshot"},
		func(ctx context.Context, progress jobs.ProgressFunc) error {
			_, err := s.reload(ctx, progress)
			return err
		})
	if err != nil {
		return "", fmt.Errorf("failed to start reload job: %w", err)
	}
	return jobID, nil
}

func (s *Session) reload(ctx context.Context, progress jobs.ProgressFunc) (Stats, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	progress(0, 3, "reading sources")
	snapshot, err := normalize.Build(ctx, s.sources, s.opts)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to build snapshot: %w", err)
	}

	progress(1, 3, "indexing entities")
	if err := s.install(snapshot); err != nil {
		return Stats{}, err
	}

	progress(2, 3, "saving snapshot")
	s.persist(snapshot)

	progress(3, 3, "done")
	return s.Stats(), nil
}

// Restore loads the snapshot saved by the last successful reload. It returns
// os.ErrNotExist when there is none.
func (s *Session) Restore() error {
	if s.dataDir == "" {
		return os.ErrNotExist
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snapshot := &store.Snapshot{}
	if err := persistence.LoadGob(filepath.Join(s.dataDir, snapshotFile), snapshot); err != nil {
		return err
	}
	if err := s.install(snapshot); err != nil {
		return err
	}
	log.Printf("Info: Restored snapshot built at %s with %d entities", snapshot.BuiltAt.Format(time.RFC3339), len(snapshot.Entities))
	return nil
}

// install builds a matcher for snapshot, swaps both in and closes the old matcher.
func (s *Session) install(snapshot *store.Snapshot) error {
	matcher, err := match.New(s.opts, snapshot.Entities)
	if err != nil {
		return fmt.Errorf("failed to create %s matcher: %w", s.opts.Search.Approach, err)
	}
	searcher, err := search.NewService(snapshot, matcher, s.opts)
	if err != nil {
		_ = matcher.Close()
		return fmt.Errorf("failed to create search service: %w", err)
	}

	s.mu.Lock()
	previous := s.current
	s.current = &loaded{snapshot: snapshot, matcher: matcher, searcher: searcher}
	s.mu.Unlock()

	if previous != nil {
		if err := previous.matcher.Close(); err != nil {
			log.Printf("Warning: Failed to close previous matcher: %v", err)
		}
	}
	return nil
}

func (s *Session) persist(snapshot *store.Snapshot) {
	if s.dataDir == "" {
		return
	}
	path := filepath.Join(s.dataDir, snapshotFile)
	if err := persistence.SaveGob(path, snapshot); err != nil {
		log.Printf("Warning: Failed to save snapshot to %s: %v", path, err)
	}
}

// Search runs one query against the current snapshot.
func (s *Session) Search(query services.SearchQuery) (services.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return services.SearchResult{}, internalErrors.ErrSnapshotNotLoaded
	}

	startTime := time.Now()
	result, err := s.current.searcher.Search(query)
	if err != nil {
		return services.SearchResult{}, err
	}
	s.track(query.QueryString, result, time.Since(startTime))
	return result, nil
}

// MultiSearch runs several named queries against the same snapshot.
func (s *Session) MultiSearch(ctx context.Context, query services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, internalErrors.ErrSnapshotNotLoaded
	}

	result, err := s.current.searcher.MultiSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, nq := range query.Queries {
		r := result.Results[nq.Name]
		s.track(nq.Query, r, time.Duration(r.Took)*time.Millisecond)
	}
	return result, nil
}

func (s *Session) track(query string, result services.SearchResult, took time.Duration) {
	s.analytics.Track(model.SearchEvent{
		Query:        query,
		Approach:     result.Approach,
		Active:       result.Active,
		ResponseTime: took,
		ResultCount:  result.Total,
	})
}

// Stats describes the current snapshot.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Stats{Approach: s.opts.Search.Approach}
	}
	return Stats{
		Loaded:   true,
		Approach: s.current.matcher.Approach(),
		Stats:    s.current.snapshot.Stats(),
	}
}

// Analytics summarizes the searches served so far.
func (s *Session) Analytics() model.AnalyticsSummary {
	return s.analytics.Summary(s.Stats().TotalEntities)
}

// Close stops background jobs, saves analytics and releases the matcher.
func (s *Session) Close() error {
	s.jobs.Stop()

	var firstErr error
	if err := s.analytics.Flush(); err != nil {
		firstErr = fmt.Errorf("failed to save analytics: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		if err := s.current.matcher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close matcher: %w", err)
		}
		s.current = nil
	}
	return firstErr
}

// Package testing provides fixtures and helpers shared by the package tests.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/normalize"
	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/services"
)

// FakeTabs is an in-memory tab lister.
type FakeTabs struct {
	mu    sync.Mutex
	Tabs  []model.RawTab
	Err   error
	calls int
}

func (f *FakeTabs) ListTabs(ctx context.Context) ([]model.RawTab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.RawTab(nil), f.Tabs...), nil
}

// Calls returns how many times ListTabs was called.
func (f *FakeTabs) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// SetTabs replaces the tabs returned by later calls.
func (f *FakeTabs) SetTabs(tabs []model.RawTab) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tabs = tabs
}

// FakeBookmarks is an in-memory bookmark reader.
type FakeBookmarks struct {
	Bookmarks []model.RawBookmark
	Err       error
}

func (f *FakeBookmarks) ReadBookmarks(ctx context.Context) ([]model.RawBookmark, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.RawBookmark(nil), f.Bookmarks...), nil
}

// FakeHistory is an in-memory history reader. It records the options of the
// last call.
type FakeHistory struct {
	mu      sync.Mutex
	Items   []model.RawHistoryItem
	Err     error
	Block   chan struct{} // when set, reads wait for it to close or for ctx
	lastOpt config.HistoryOptions
}

func (f *FakeHistory) ReadHistory(ctx context.Context, opts config.HistoryOptions) ([]model.RawHistoryItem, error) {
	f.mu.Lock()
	f.lastOpt = opts
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.RawHistoryItem(nil), f.Items...), nil
}

// LastOptions returns the history options of the last call.
func (f *FakeHistory) LastOptions() config.HistoryOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpt
}

// SampleTabs returns two open tabs.
func SampleTabs() []model.RawTab {
	return []model.RawTab{
		{ID: 1, WindowID: 1, Title: "Go Playground", URL: "https://go.dev/play", Active: true},
		{ID: 2, WindowID: 1, Title: "Pull requests", URL: "https://github.com/pulls"},
	}
}

// SampleBookmarks returns three bookmarks, two of them tagged.
func SampleBookmarks() []model.RawBookmark {
	return []model.RawBookmark{
		{ID: "10", Title: "inbox #work", URL: "https://mail.example.com", ContainerPath: "Bookmarks bar/Work"},
		{ID: "11", Title: "Workflow docs #workflow", URL: "https://docs.example.com/workflow", ContainerPath: "Bookmarks bar/Work/Dev"},
		{ID: "12", Title: "GitHub", URL: "https://github.com", ContainerPath: "Bookmarks bar"},
	}
}

// SampleHistory returns three history items; two share a URL with a bookmark.
func SampleHistory() []model.RawHistoryItem {
	visited := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	return []model.RawHistoryItem{
		{ID: "100", Title: "inbox rules", URL: "https://mail.example.com/rules", VisitCount: 5, LastVisitTime: visited},
		{ID: "101", Title: "GitHub", URL: "https://github.com", VisitCount: 12, LastVisitTime: visited},
		{ID: "102", Title: "Go Playground", URL: "https://go.dev/play", VisitCount: 3, LastVisitTime: visited},
	}
}

// SampleSources returns fake sources serving the sample fixtures.
func SampleSources() (normalize.Sources, *FakeTabs, *FakeBookmarks, *FakeHistory) {
	tabs := &FakeTabs{Tabs: SampleTabs()}
	bookmarks := &FakeBookmarks{Bookmarks: SampleBookmarks()}
	history := &FakeHistory{Items: SampleHistory()}
	return normalize.Sources{Tabs: tabs, Bookmarks: bookmarks, History: history}, tabs, bookmarks, history
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// DefaultJobPollingOptions returns polling defaults suitable for unit tests
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

// WaitForJob polls a job until it reaches a terminal status and returns it.
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()

	deadline := time.Now().Add(opts.Timeout)
	for {
		job, err := jobManager.GetJob(jobID)
		require.NoError(t, err, "Failed to get job status")
		if job.IsFinished() {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job %s did not finish within %v (status %s)", jobID, opts.Timeout, job.Status)
		}
		time.Sleep(opts.PollInterval)
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed (error: %s)", job.Error)
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name          string
	Query         string
	ExpectedCount int    // -1 skips the count check
	ExpectedFirst string // expected ID of the first hit
	ValidateFunc  func(t *testing.T, result services.SearchResult)
}

// RunSearchTests runs a suite of search tests against a searcher
func RunSearchTests(t *testing.T, searcher services.Searcher, tests []SearchTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := searcher.Search(services.SearchQuery{QueryString: tt.Query})
			require.NoError(t, err, "Search should not fail")

			if tt.ExpectedCount >= 0 {
				assert.Equal(t, tt.ExpectedCount, result.Total, "Result count should match")
			}
			if tt.ExpectedFirst != "" {
				require.NotEmpty(t, result.Hits, "Expected at least one hit")
				assert.Equal(t, tt.ExpectedFirst, result.Hits[0].Entity.ID, "First result should match expected")
			}
			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}

// HitIDs returns the entity IDs of the hits, in order.
func HitIDs(hits []model.ScoredResult) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Entity.ID)
	}
	return ids
}

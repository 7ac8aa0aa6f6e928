// Package jobs runs background work, such as snapshot reloads, and keeps
// track of its progress so that callers can poll for the outcome.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
)

const (
	defaultRetention = 24 * time.Hour
	pruneInterval    = time.Hour
)

// ProgressFunc reports how far a running job got.
type ProgressFunc func(current, total int, message string)

// JobFunc is the work of one job. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, progress ProgressFunc) error

// ErrManagerStopped is returned when work is submitted after Stop.
var ErrManagerStopped = errors.New("job manager is stopped")

// Manager executes jobs on a bounded number of workers.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	slots   chan struct{}
	metrics *Metrics

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	retention time.Duration
}

// NewManager creates a manager that runs at most maxWorkers jobs at once.
func NewManager(maxWorkers int) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:      make(map[string]*model.Job),
		slots:     make(chan struct{}, maxWorkers),
		metrics:   NewMetrics(),
		ctx:       ctx,
		cancel:    cancel,
		retention: defaultRetention,
	}
}

// Start launches the routine that prunes finished jobs.
func (m *Manager) Start() {
	log.Printf("Info: Job manager started with %d workers", cap(m.slots))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Prune(m.retention)
			case <-m.ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels running jobs and waits for them to return. It is safe to call
// more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		log.Printf("Info: Job manager stopped")
	})
}

// Submit creates a job and runs fn for it in the background.
func (m *Manager) Submit(jobType model.JobType, metadata map[string]string, fn JobFunc) (string, error) {
	if m.ctx.Err() != nil {
		return "", ErrManagerStopped
	}
	jobID := m.CreateJob(jobType, metadata)
	if err := m.Run(jobID, fn); err != nil {
		return "", err
	}
	return jobID, nil
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.metrics.recordCreated(jobType)
	log.Printf("Info: Created job %s (type: %s)", job.ID, job.Type)
	return job.ID
}

// Run executes fn for a pending job. The job stays pending until a worker is
// free; Run itself never blocks on workers.
func (m *Manager) Run(jobID string, fn JobFunc) error {
	m.mu.RLock()
	job, exists := m.jobs[jobID]
	status := model.JobStatus("")
	if exists {
		status = job.Status
	}
	m.mu.RUnlock()

	if !exists {
		return internalErrors.NewJobNotFoundError(jobID)
	}
	if status != model.JobStatusPending {
		return fmt.Errorf("job '%s' is not pending (current: %s)", jobID, status)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		select {
		case m.slots <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "job manager stopped before the job started", 0)
			return
		}
		defer func() { <-m.slots }()
		if m.ctx.Err() != nil {
			m.finish(jobID, model.JobStatusCancelled, "job manager stopped before the job started", 0)
			return
		}

		m.transition(jobID, model.JobStatusRunning)
		startTime := time.Now()
		err := fn(m.ctx, func(current, total int, message string) {
			m.ReportProgress(jobID, current, total, message)
		})
		elapsed := time.Since(startTime)

		switch {
		case err != nil && m.ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error(), elapsed)
			log.Printf("Warning: Job %s cancelled after %v: %v", jobID, elapsed, err)
		case err != nil:
			m.finish(jobID, model.JobStatusFailed, err.Error(), elapsed)
			log.Printf("Warning: Job %s failed after %v: %v", jobID, elapsed, err)
		default:
			m.finish(jobID, model.JobStatusCompleted, "", elapsed)
			log.Printf("Info: Job %s completed in %v", jobID, elapsed)
		}
	}()
	return nil
}

// GetJob returns a copy of the job with the given ID.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, internalErrors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of all jobs, newest first, optionally filtered by status.
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ReportProgress records the progress of a job. Unknown jobs are ignored.
func (m *Manager) ReportProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	job.Progress = &model.JobProgress{Current: current, Total: total, Message: message}
}

// Prune removes jobs that finished more than maxAge ago and returns how many.
func (m *Manager) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for id, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			m.metrics.recordPruned(job.Status)
			delete(m.jobs, id)
			pruned++
		}
	}
	if pruned > 0 {
		log.Printf("Info: Pruned %d finished jobs", pruned)
	}
	return pruned
}

// Metrics returns the current job counters.
func (m *Manager) Metrics() MetricsData {
	return m.metrics.Snapshot()
}

func (m *Manager) transition(jobID string, status model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	from := job.Status
	job.Status = status
	if status == model.JobStatusRunning {
		now := time.Now()
		job.StartedAt = &now
	}
	m.metrics.recordTransition(from, status, 0)
}

func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	from := job.Status
	job.Status = status
	job.Error = errorMsg
	now := time.Now()
	job.CompletedAt = &now
	m.metrics.recordTransition(from, status, elapsed)
}

func copyJob(job *model.Job) *model.Job {
	c := *job
	if job.Progress != nil {
		progress := *job.Progress
		c.Progress = &progress
	}
	if job.Metadata != nil {
		c.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/go-browser-search/model"
)

// MetricsData is a point-in-time copy of the job counters.
type MetricsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	JobsCancelled        int64                     `json:"jobs_cancelled"`
	ActiveJobs           int64                     `json:"active_jobs"`
	SuccessRate          float64                   `json:"success_rate"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// Metrics counts job lifecycle events.
type Metrics struct {
	mu             sync.RWMutex
	created        int64
	completed      int64
	failed         int64
	cancelled      int64
	totalExecution time.Duration
	byType         map[model.JobType]int64
	byStatus       map[model.JobStatus]int64
	lastUpdated    time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		lastUpdated: time.Now(),
	}
}

func (m *Metrics) recordCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// recordTransition moves one job from one status bucket to another. Terminal
// statuses also update the outcome counters.
func (m *Metrics) recordTransition(from, to model.JobStatus, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byStatus[from] > 0 {
		m.byStatus[from]--
	}
	m.byStatus[to]++

	switch to {
	case model.JobStatusCompleted:
		m.completed++
		m.totalExecution += executionTime
	case model.JobStatusFailed:
		m.failed++
	case model.JobStatusCancelled:
		m.cancelled++
	}
	m.lastUpdated = time.Now()
}

func (m *Metrics) recordPruned(status model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byStatus[status] > 0 {
		m.byStatus[status]--
	}
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[model.JobType]int64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	byStatus := make(map[model.JobStatus]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}

	data := MetricsData{
		JobsCreated:   m.created,
		JobsCompleted: m.completed,
		JobsFailed:    m.failed,
		JobsCancelled: m.cancelled,
		ActiveJobs:    m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		SuccessRate:   1.0,
		JobsByType:    byType,
		JobsByStatus:  byStatus,
		LastUpdated:   m.lastUpdated,
	}
	if m.completed > 0 {
		data.AverageExecutionTime = m.totalExecution / time.Duration(m.completed)
	}
	if finished := m.completed + m.failed; finished > 0 {
		data.SuccessRate = float64(m.completed) / float64(finished)
	}
	return data
}

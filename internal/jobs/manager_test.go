package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
	"github.com/gcbaptista/go-browser-search/model"
)

func waitForStatus(t *testing.T, m *Manager, jobID string, status model.JobStatus) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.GetJob(jobID)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReloadSnapshot, map[string]string{"trigger": "test"})
	require.NotEmpty(t, jobID)

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeReloadSnapshot, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "test", job.Metadata["trigger"])
	assert.Nil(t, job.StartedAt)
}

func TestManager_SubmitCompletes(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeReloadSnapshot, nil, func(ctx context.Context, progress ProgressFunc) error {
		progress(1, 2, "halfway")
		progress(2, 2, "done")
		return nil
	})
	require.NoError(t, err)

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 2, job.Progress.Current)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.IsFinished())

	metrics := manager.Metrics()
	assert.Equal(t, int64(1), metrics.JobsCreated)
	assert.Equal(t, int64(1), metrics.JobsCompleted)
	assert.Equal(t, int64(0), metrics.ActiveJobs)
	assert.Equal(t, 1.0, metrics.SuccessRate)
}

func TestManager_SubmitFails(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeReloadSnapshot, nil, func(ctx context.Context, progress ProgressFunc) error {
		return errors.New("history database is locked")
	})
	require.NoError(t, err)

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	assert.Equal(t, "history database is locked", job.Error)

	metrics := manager.Metrics()
	assert.Equal(t, int64(1), metrics.JobsFailed)
	assert.Equal(t, 0.0, metrics.SuccessRate)
}

func TestManager_RunRejectsUnknownAndStartedJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	err := manager.Run("missing", func(ctx context.Context, progress ProgressFunc) error { return nil })
	assert.ErrorIs(t, err, internalErrors.ErrJobNotFound)

	jobID := manager.CreateJob(model.JobTypeReloadSnapshot, nil)
	require.NoError(t, manager.Run(jobID, func(ctx context.Context, progress ProgressFunc) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	assert.Error(t, manager.Run(jobID, func(ctx context.Context, progress ProgressFunc) error { return nil }))
}

func TestManager_WorkerLimit(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	release := make(chan struct{})
	var running int32
	var maxRunning int32

	work := func(ctx context.Context, progress ProgressFunc) error {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxRunning)
			if n <= old || atomic.CompareAndSwapInt32(&maxRunning, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		return nil
	}

	first, err := manager.Submit(model.JobTypeReloadSnapshot, nil, work)
	require.NoError(t, err)
	second, err := manager.Submit(model.JobTypeReloadSnapshot, nil, work)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&running) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), manager.Metrics().ActiveJobs)

	close(release)
	waitForStatus(t, manager, first, model.JobStatusCompleted)
	waitForStatus(t, manager, second, model.JobStatusCompleted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1)

	started := make(chan struct{})
	jobID, err := manager.Submit(model.JobTypeReloadSnapshot, nil, func(ctx context.Context, progress ProgressFunc) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	<-started

	manager.Stop()
	manager.Stop()

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, job.Status)

	_, err = manager.Submit(model.JobTypeReloadSnapshot, nil, func(ctx context.Context, progress ProgressFunc) error { return nil })
	assert.ErrorIs(t, err, ErrManagerStopped)
}

func TestManager_ListJobsAndPrune(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	done := manager.CreateJob(model.JobTypeReloadSnapshot, nil)
	require.NoError(t, manager.Run(done, func(ctx context.Context, progress ProgressFunc) error { return nil }))
	waitForStatus(t, manager, done, model.JobStatusCompleted)

	time.Sleep(2 * time.Millisecond)
	pending := manager.CreateJob(model.JobTypeRestoreSnapshot, nil)

	all := manager.ListJobs(nil)
	require.Len(t, all, 2)
	assert.Equal(t, pending, all[0].ID)

	completed := model.JobStatusCompleted
	filtered := manager.ListJobs(&completed)
	require.Len(t, filtered, 1)
	assert.Equal(t, done, filtered[0].ID)

	assert.Equal(t, 0, manager.Prune(time.Hour))
	assert.Equal(t, 1, manager.Prune(0))

	_, err := manager.GetJob(done)
	assert.ErrorIs(t, err, internalErrors.ErrJobNotFound)
	assert.Len(t, manager.ListJobs(nil), 1)
}

func TestManager_GetJobReturnsCopy(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReloadSnapshot, map[string]string{"k": "v"})
	job, err := manager.GetJob(jobID)
	require.NoError(t, err)

	job.Status = model.JobStatusFailed
	job.Metadata["k"] = "changed"

	again, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, again.Status)
	assert.Equal(t, "v", again.Metadata["k"])
}

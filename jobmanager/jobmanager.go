package jobmanager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrShuttingDown = errors.New("job manager is shutting down")

// JobManager runs tasks with bounded concurrency. Each job gets its own
// context derived from the manager's, so jobs can be cancelled one by one
// or all together on Shutdown.
type JobManager struct {
	jobs       map[JobID]*Job
	mu         sync.RWMutex
	semaphore  chan struct{} // concurrency limit
	nextID     JobID
	notifyChan chan JobNotification // best effort, dropped when full
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// JobNotification represents a notification about a job status change
type JobNotification struct {
	JobID  JobID
	Name   string
	Status JobStatus
	Error  error
}

// NewJobManager creates a new JobManager with the specified concurrency limit
func NewJobManager(concurrencyLimit int) *JobManager {
	if concurrencyLimit < 1 {
		concurrencyLimit = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &JobManager{
		jobs:       make(map[JobID]*Job),
		semaphore:  make(chan struct{}, concurrencyLimit),
		nextID:     1,
		notifyChan: make(chan JobNotification, 100),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit waits for a free slot, then starts task in its own goroutine.
// It fails when ctx is done or the manager is shutting down first.
func (jm *JobManager) Submit(ctx context.Context, name string, task Task) (JobID, error) {
	select {
	case <-jm.ctx.Done():
		return 0, ErrShuttingDown
	default:
	}

	select {
	case jm.semaphore <- struct{}{}:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-jm.ctx.Done():
		return 0, ErrShuttingDown
	}

	// Shutdown cancels under mu, so a job registered here is always
	// counted before Shutdown starts waiting.
	jm.mu.Lock()
	if jm.ctx.Err() != nil {
		jm.mu.Unlock()
		<-jm.semaphore
		return 0, ErrShuttingDown
	}
	jobCtx, cancel := context.WithCancel(jm.ctx)
	stop := context.AfterFunc(ctx, cancel)
	jobID := jm.nextID
	jm.nextID++
	job := NewJob(jobID, name, cancel)
	jm.jobs[jobID] = job
	jm.wg.Add(1)
	jm.mu.Unlock()

	go jm.executeJob(jobCtx, job, task, stop)

	return jobID, nil
}

// executeJob executes a job and handles its lifecycle
func (jm *JobManager) executeJob(ctx context.Context, job *Job, task Task, stop func() bool) {
	defer jm.wg.Done()
	defer func() {
		stop()
		job.cancel()
		<-jm.semaphore
	}()

	result, err := task(ctx)

	switch {
	case err != nil && ctx.Err() != nil:
		job.finish(StatusCancelled, nil, err)
	case err != nil:
		job.finish(StatusFailed, nil, err)
	default:
		job.finish(StatusCompleted, result, nil)
	}

	jm.notify(JobNotification{
		JobID:  job.ID,
		Name:   job.Name,
		Status: job.GetStatus(),
		Error:  job.GetError(),
	})
}

func (jm *JobManager) notify(n JobNotification) {
	select {
	case jm.notifyChan <- n:
	default:
	}
}

// GetJobStatus returns the status of a specific job
func (jm *JobManager) GetJobStatus(id JobID) (JobStatus, error) {
	job, err := jm.GetJob(id)
	if err != nil {
		return "", err
	}
	return job.GetStatus(), nil
}

// GetJob returns a specific job
func (jm *JobManager) GetJob(id JobID) (*Job, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job with ID %d not found", id)
	}

	return job, nil
}

// ListJobs returns all jobs in submission order
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })

	return jobs
}

// GetNotificationChannel returns the channel for job notifications
func (jm *JobManager) GetNotificationChannel() <-chan JobNotification {
	return jm.notifyChan
}

// Wait blocks until every submitted job has finished
func (jm *JobManager) Wait() {
	jm.wg.Wait()
}

// Shutdown cancels running jobs, waits for them and closes the notification
// channel. Later calls only wait.
func (jm *JobManager) Shutdown() {
	jm.mu.Lock()
	jm.cancel()
	jm.mu.Unlock()

	jm.wg.Wait()
	jm.closeOnce.Do(func() { close(jm.notifyChan) })
}

// GetRunningJobsCount returns the number of currently running jobs
func (jm *JobManager) GetRunningJobsCount() int {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	count := 0
	for _, job := range jm.jobs {
		if job.GetStatus() == StatusRunning {
			count++
		}
	}

	return count
}

// GetConcurrencyLimit returns the concurrency limit
func (jm *JobManager) GetConcurrencyLimit() int {
	return cap(jm.semaphore)
}

// CancelJob cancels the context of a running job. The task decides how fast it stops.
func (jm *JobManager) CancelJob(id JobID) error {
	job, err := jm.GetJob(id)
	if err != nil {
		return err
	}

	if status := job.GetStatus(); status != StatusRunning {
		return fmt.Errorf("job %d is not running (status: %s)", id, status)
	}

	job.cancel()
	return nil
}

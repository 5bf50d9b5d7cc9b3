package jobmanager

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobID is a unique identifier for a job
type JobID int64

// JobStatus represents the current status of a job
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Task is the unit of work a job runs. It must return promptly once ctx is done.
type Task func(ctx context.Context) (interface{}, error)

// Job tracks one submitted task, typically the analysis of one source unit
type Job struct {
	ID        JobID
	Status    JobStatus
	Name      string      // source unit the job works on
	Result    interface{} // set on completion
	Error     error       // set on failure or cancellation
	StartTime time.Time
	EndTime   time.Time // zero while running
	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.RWMutex
}

// NewJob creates a running job
func NewJob(id JobID, name string, cancel context.CancelFunc) *Job {
	return &Job{
		ID:        id,
		Status:    StatusRunning,
		Name:      name,
		StartTime: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// GetStatus returns the current status of the job
func (j *Job) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// GetResult returns the result of the job
func (j *Job) GetResult() interface{} {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Result
}

// GetError returns the error of the job
func (j *Job) GetError() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Error
}

// finish records the outcome exactly once and releases waiters
func (j *Job) finish(status JobStatus, result interface{}, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusRunning {
		return
	}
	j.Status = status
	j.Result = result
	j.Error = err
	j.EndTime = time.Now()
	close(j.done)
}

// Done is closed when the job has finished
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// GetDuration returns the duration of the job
func (j *Job) GetDuration() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.EndTime.IsZero() {
		return time.Since(j.StartTime)
	}
	return j.EndTime.Sub(j.StartTime)
}

// ToMap returns a map representation of the job for reporting
func (j *Job) ToMap() map[string]interface{} {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := map[string]interface{}{
		"id":         j.ID,
		"status":     j.Status,
		"name":       j.Name,
		"start_time": j.StartTime.Format(time.RFC3339),
	}

	if !j.EndTime.IsZero() {
		result["end_time"] = j.EndTime.Format(time.RFC3339)
		result["duration"] = j.EndTime.Sub(j.StartTime).String()
	}

	if j.Error != nil {
		result["error"] = j.Error.Error()
	}

	return result
}

// String returns a string representation of the job
func (j *Job) String() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	duration := "running"
	if !j.EndTime.IsZero() {
		duration = j.EndTime.Sub(j.StartTime).String()
	}

	return fmt.Sprintf("Job[%d] %s - %s (%s)", j.ID, j.Name, j.Status, duration)
}

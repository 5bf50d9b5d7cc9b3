package engine

import (
	"context"

	"jsctx/jobmanager"
	"jsctx/logging"
)

// Unit is one named source to analyze
type Unit struct {
	Name   string
	Source string
}

// BatchResult reports the outcome of one unit in AnalyzeAll
type BatchResult struct {
	Name   string
	JobID  jobmanager.JobID
	Status jobmanager.JobStatus
	Result *Result
	Err    error
}

// AnalyzeAll analyzes units on the engine's worker pool, one job per unit,
// and returns the outcomes in input order. It stops submitting when ctx is
// done; units that were never started are reported with ctx's error.
func (e *Engine) AnalyzeAll(ctx context.Context, units []Unit, opts Options) []BatchResult {
	results := make([]BatchResult, len(units))
	jobs := make([]*jobmanager.Job, len(units))

	for i, unit := range units {
		results[i].Name = unit.Name

		id, err := e.jobManager.Submit(ctx, unit.Name, func(jobCtx context.Context) (interface{}, error) {
			return e.Analyze(jobCtx, unit.Name, unit.Source, opts)
		})
		if err != nil {
			e.logger.Warn("unit not submitted", logging.StringField("unit", unit.Name), logging.ErrorField("error", err))
			results[i].Status = jobmanager.StatusCancelled
			results[i].Err = err
			continue
		}
		results[i].JobID = id
		jobs[i], _ = e.jobManager.GetJob(id)
	}

	for i, job := range jobs {
		if job == nil {
			continue
		}
		<-job.Done()
		results[i].Status = job.GetStatus()
		results[i].Err = job.GetError()
		if r, ok := job.GetResult().(*Result); ok {
			results[i].Result = r
		}
	}
	return results
}

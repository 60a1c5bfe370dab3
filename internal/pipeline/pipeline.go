// Package pipeline contains the job engine: a fixed, strictly sequential
// list of steps walked over an accumulating per-job context. Steps are
// idempotent over the fields they own and skip themselves when their output
// already exists, so re-running the pipeline on a partially completed job
// resumes instead of redoing work.
package pipeline

import (
	"context"
	"fmt"

	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/timing"
)

// Context is the per-run projection of one job. It is rebuilt from the
// persisted record at every (re)start, so a crash loses at most the step
// that was in flight. Job carries the accumulated, persisted fields;
// Timings and Manifest are derived working state that later steps recompute
// when a resume left them empty.
type Context struct {
	Job      *domain.VideoJob
	Timings  []timing.Interval
	Manifest *domain.RenderManifest
}

// NewContext builds the run context for a job.
func NewContext(job *domain.VideoJob) *Context {
	return &Context{Job: job}
}

// Step is one unit of the pipeline.
type Step interface {
	// Name returns the human-readable step label used in logs and the
	// job's current_step column.
	Name() string

	// Status returns the job status published when the step starts.
	// Empty means the step runs without a status transition.
	Status() domain.JobStatus

	Execute(ctx context.Context, pc *Context) error
}

// Skipper is implemented by steps whose output may already exist on the
// job record. The predicate lives on the step itself so two steps can
// never disagree about which of them should run.
type Skipper interface {
	ShouldSkip(pc *Context) bool
}

// StatusFunc publishes a status transition before a step runs.
type StatusFunc func(ctx context.Context, status domain.JobStatus, stepLabel string) error

// CompleteFunc is invoked after each step that actually executed.
type CompleteFunc func(ctx context.Context, step Step, pc *Context) error

// Execute walks steps in order against pc. Skipped steps publish nothing
// and trigger no completion callback. The first error propagates out
// unchanged, wrapped only with the step name; converting it into a failed
// job is the caller's responsibility. There are no retries and no
// parallelism between steps.
func Execute(ctx context.Context, pc *Context, steps []Step, publishStatus StatusFunc, onStepComplete CompleteFunc) error {
	for _, step := range steps {
		if s, ok := step.(Skipper); ok && s.ShouldSkip(pc) {
			logger.With(logger.Fields{logger.FieldStep: step.Name()}).
				Debug(ctx, "step output already present, skipping")
			continue
		}

		stepCtx := logger.SetStep(ctx, step.Name())
		if status := step.Status(); status != "" && publishStatus != nil {
			if err := publishStatus(stepCtx, status, step.Name()); err != nil {
				return fmt.Errorf("step %s: publish status: %w", step.Name(), err)
			}
		}

		if err := step.Execute(stepCtx, pc); err != nil {
			return fmt.Errorf("step %s: %w", step.Name(), err)
		}

		if onStepComplete != nil {
			if err := onStepComplete(stepCtx, step, pc); err != nil {
				return fmt.Errorf("step %s: completion callback: %w", step.Name(), err)
			}
		}
	}
	return nil
}

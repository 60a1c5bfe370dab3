package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/media"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/storage"
	"github.com/voxreel/voxreel/internal/timing"
)

// Notifier delivers job lifecycle callbacks. Delivery is best effort and
// must never fail the pipeline.
type Notifier interface {
	Notify(ctx context.Context, job *domain.VideoJob)
}

// Deps bundles everything the standard step list needs.
type Deps struct {
	Store       repository.JobStore
	Transcriber media.Transcriber
	Planner     media.Planner
	Synthesizer media.Synthesizer
	Images      media.ImageGenerator
	Videos      media.VideoGenerator
	Subtitles   media.SubtitleGenerator
	Renderer    media.Renderer
	Music       media.MusicSelector
	Notifier    Notifier
	Pipeline    config.PipelineConfig
	Branding    config.BrandingConfig
}

// Runner drives one job through the standard step list. A single logical
// worker owns a job id at a time; Run may be called again on the same id
// after a crash and resumes from the persisted record.
type Runner struct {
	store    repository.JobStore
	notifier Notifier
	steps    []Step
}

// NewRunner assembles the standard pipeline.
// Parameters:
//   - deps: collaborator set and pipeline tuning.
//
// Returns:
//   - *Runner: ready-to-use job runner.
func NewRunner(deps Deps) *Runner {
	fitter := timing.NewFitter(deps.Pipeline.WordsPerSecond)
	steps := []Step{
		NewTranscriptionStep(deps.Transcriber, deps.Store),
		NewInstructionStep(deps.Store),
		NewIntentStep(deps.Planner, deps.Store),
		NewContentModeStep(deps.Planner, deps.Store),
		NewPlanningStep(deps.Planner, deps.Store),
		NewCommentaryStep(deps.Planner, fitter, deps.Store, deps.Pipeline.CommentaryRetries),
		NewVoiceoverStep(deps.Synthesizer, fitter, deps.Store),
		NewMusicStep(deps.Music, deps.Store),
		NewImageStep(deps.Images, deps.Store, deps.Pipeline.ImageDelay),
		NewAnimatedVideoStep(deps.Videos, deps.Images, deps.Store, deps.Pipeline.MaxClipSeconds, deps.Pipeline.ClipConcurrency),
		NewSubtitleStep(deps.Subtitles, deps.Store),
		NewManifestStep(deps.Branding),
		NewRenderStep(deps.Renderer, deps.Store),
	}
	return &Runner{store: deps.Store, notifier: deps.Notifier, steps: steps}
}

// NewRunnerFromConfig wires the remote media backends described by cfg,
// with fallback backends where configured, into the standard pipeline.
// Both the API server and the worker command build their runner here so
// the wiring cannot drift between them.
func NewRunnerFromConfig(cfg *config.Config, store repository.JobStore, objectStorage storage.ObjectStorage) *Runner {
	var plannerFallback media.Planner
	if cfg.LLM.HasFallback() {
		plannerFallback = media.NewLLMPlanner(&cfg.LLM.Fallback)
	}
	planner := media.WithPlannerFallback(media.NewLLMPlanner(&cfg.LLM.Primary), plannerFallback)

	var ttsFallback media.Synthesizer
	if cfg.TTS.HasFallback() {
		ttsFallback = media.NewEndpointSynthesizer(&cfg.TTS.Fallback)
	}
	synthesizer := media.WithSynthesizerFallback(media.NewEndpointSynthesizer(&cfg.TTS.Primary), ttsFallback)

	var imageFallback media.ImageGenerator
	if cfg.Image.HasFallback() {
		imageFallback = media.NewEndpointImageGenerator(&cfg.Image.Fallback)
	}
	images := media.WithImageFallback(media.NewEndpointImageGenerator(&cfg.Image.Primary), imageFallback)

	var videoFallback media.VideoGenerator
	if cfg.Video.HasFallback() {
		videoFallback = media.NewEndpointVideoGenerator(&cfg.Video.Fallback)
	}
	videos := media.WithVideoFallback(media.NewEndpointVideoGenerator(&cfg.Video.Primary), videoFallback)

	return NewRunner(Deps{
		Store:       store,
		Transcriber: media.NewWhisperTranscriber(&cfg.Transcription),
		Planner:     planner,
		Synthesizer: synthesizer,
		Images:      images,
		Videos:      videos,
		Subtitles:   media.NewEndpointSubtitleGenerator(&cfg.Subtitles),
		Renderer:    media.NewEndpointRenderer(&cfg.Render),
		Music:       media.NewLibraryMusicSelector(objectStorage, cfg.Music.LibraryPrefix),
		Notifier:    media.NewWebhookNotifier(cfg.Webhook.Timeout),
		Pipeline:    cfg.Pipeline,
		Branding:    cfg.Branding,
	})
}

// Run executes (or resumes) the job with the given id. Any step error is
// converted into a failed job plus a best-effort failure callback; the
// happy path marks the job completed and fires the success callback.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	job, err := r.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	ctx = logger.SetJobID(ctx, job.ID)
	if job.Status.IsTerminal() {
		logger.With(logger.Fields{logger.FieldStatus: string(job.Status)}).
			Info(ctx, "job already terminal, nothing to run")
		return nil
	}

	pc := NewContext(job)
	publish := func(ctx context.Context, status domain.JobStatus, label string) error {
		pc.Job.Status = status
		pc.Job.CurrentStep = label
		return r.store.UpdateStatus(ctx, pc.Job.ID, status, label)
	}

	start := time.Now()
	if err := Execute(ctx, pc, r.steps, publish, nil); err != nil {
		logger.With(logger.Fields{logger.FieldStep: pc.Job.CurrentStep}).
			Error(ctx, "pipeline failed: %v", err)
		r.store.Fail(ctx, pc.Job.ID, err.Error())
		pc.Job.Status = domain.JobStatusFailed
		pc.Job.Error = err.Error()
		if r.notifier != nil {
			r.notifier.Notify(ctx, pc.Job)
		}
		return err
	}

	now := time.Now().UTC()
	completed := domain.JobStatusCompleted
	if err := r.store.Update(ctx, pc.Job.ID, &repository.JobPatch{
		Status:      &completed,
		CurrentStep: repository.Ptr(""),
		CompletedAt: &now,
	}); err != nil {
		return fmt.Errorf("mark job %s completed: %w", pc.Job.ID, err)
	}
	pc.Job.Status = completed
	pc.Job.CompletedAt = &now

	if r.notifier != nil {
		r.notifier.Notify(ctx, pc.Job)
	}
	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		"video_url":            pc.Job.FinalVideoURL,
	}).Info(ctx, "job completed")
	return nil
}

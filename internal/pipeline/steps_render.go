package pipeline

import (
	"context"
	"fmt"

	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/media"
	"github.com/voxreel/voxreel/internal/repository"
)

// ManifestStep assembles the render manifest purely from fields earlier
// steps already accumulated; it performs no remote calls, so it re-runs
// cheaply after a resume that lost the derived timings.
type ManifestStep struct {
	branding config.BrandingConfig
}

func NewManifestStep(branding config.BrandingConfig) *ManifestStep {
	return &ManifestStep{branding: branding}
}

func (s *ManifestStep) Name() string { return "manifest" }

func (s *ManifestStep) Status() domain.JobStatus { return domain.JobStatusBuildingManifest }

// ShouldSkip drops the rebuild once the render already happened; nothing
// downstream consumes the manifest after that.
func (s *ManifestStep) ShouldSkip(pc *Context) bool { return pc.Job.FinalVideoURL != "" }

func (s *ManifestStep) Execute(ctx context.Context, pc *Context) error {
	job := pc.Job
	if job.VoiceoverURL == "" || job.VoiceoverDuration <= 0 {
		return fmt.Errorf("manifest requires a synthesized voiceover")
	}
	if job.RenderStrategy == domain.RenderStrategyImages && len(job.ImageURLs) < len(job.Segments) {
		return fmt.Errorf("manifest requires %d images, have %d", len(job.Segments), len(job.ImageURLs))
	}

	if len(pc.Timings) != len(job.Segments) {
		pc.Timings = deriveTimings(job.Segments, job.VoiceoverDuration)
	}

	segments := make([]domain.Segment, len(job.Segments))
	for i, content := range job.Segments {
		segments[i] = domain.Segment{
			Index:  i,
			Start:  pc.Timings[i].Start,
			End:    pc.Timings[i].End,
			Effect: content.Effect,
		}
		if job.RenderStrategy == domain.RenderStrategyImages {
			segments[i].AssetURL = job.ImageURLs[i]
		}
	}

	manifest := &domain.RenderManifest{
		JobID:                job.ID,
		VoiceoverURL:         job.VoiceoverURL,
		VoiceoverDuration:    job.VoiceoverDuration,
		MusicURL:             job.MusicURL,
		MusicDurationSeconds: job.MusicDuration,
		SubtitlesURL:         job.SubtitlesURL,
		Segments:             segments,
		TotalDuration:        job.VoiceoverDuration,
		LogoURL:              s.branding.LogoURL,
		LogoPosition:         s.branding.LogoPosition,
	}
	if job.RenderStrategy != domain.RenderStrategyImages {
		manifest.AnimatedVideoURLs = job.ClipURLs
	}

	pc.Manifest = manifest
	logger.With(logger.Fields{
		logger.FieldCount: len(segments),
		"total_seconds":   manifest.TotalDuration,
	}).Info(ctx, "render manifest assembled")
	return nil
}

// RenderStep hands the manifest to the render backend and records the
// finished video URL.
type RenderStep struct {
	renderer media.Renderer
	store    repository.JobStore
}

func NewRenderStep(renderer media.Renderer, store repository.JobStore) *RenderStep {
	return &RenderStep{renderer: renderer, store: store}
}

func (s *RenderStep) Name() string { return "render" }

func (s *RenderStep) Status() domain.JobStatus { return domain.JobStatusRendering }

func (s *RenderStep) ShouldSkip(pc *Context) bool { return pc.Job.FinalVideoURL != "" }

func (s *RenderStep) Execute(ctx context.Context, pc *Context) error {
	if pc.Manifest == nil {
		return fmt.Errorf("render manifest not built")
	}

	url, err := s.renderer.Render(ctx, pc.Manifest)
	if err != nil {
		return fmt.Errorf("render video: %w", err)
	}

	pc.Job.FinalVideoURL = url
	logger.With(logger.Fields{"video_url": url}).Info(ctx, "video rendered")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{FinalVideoURL: repository.Ptr(url)})
}

package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/media"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/timing"
)

// VoiceoverStep synthesizes the narration audio. When the measured
// duration overshoots the target and the required playback speed clamps
// inside the safe range, it issues exactly one re-synthesis at that speed.
// Beyond the clamp the text itself is shrunk and synthesized once more at
// normal speed instead of playing it back distorted.
type VoiceoverStep struct {
	synth  media.Synthesizer
	fitter timing.Fitter
	store  repository.JobStore
}

func NewVoiceoverStep(synth media.Synthesizer, fitter timing.Fitter, store repository.JobStore) *VoiceoverStep {
	return &VoiceoverStep{synth: synth, fitter: fitter, store: store}
}

func (s *VoiceoverStep) Name() string { return "voiceover" }

func (s *VoiceoverStep) Status() domain.JobStatus { return domain.JobStatusSynthesizingVoice }

func (s *VoiceoverStep) ShouldSkip(pc *Context) bool { return pc.Job.VoiceoverURL != "" }

func (s *VoiceoverStep) Execute(ctx context.Context, pc *Context) error {
	text := joinCommentary(pc.Job.Segments)
	if text == "" {
		return fmt.Errorf("no commentary to synthesize")
	}

	result, err := s.synth.Synthesize(ctx, media.SpeechRequest{Text: text, VoiceID: pc.Job.VoiceID})
	if err != nil {
		return fmt.Errorf("synthesize voiceover: %w", err)
	}

	target := pc.Job.Plan.TargetDurationSeconds
	truncated := false
	if result.DurationSeconds > target {
		multiplier, within := s.fitter.SpeedMultiplier(result.DurationSeconds, target)
		if within {
			logger.With(logger.Fields{
				"actual_seconds": result.DurationSeconds,
				"target_seconds": target,
				"speed":          multiplier,
			}).Info(ctx, "voiceover over target, re-synthesizing at adjusted speed")
			result, err = s.synth.Synthesize(ctx, media.SpeechRequest{Text: text, VoiceID: pc.Job.VoiceID, Speed: multiplier})
		} else {
			// Shrink the segments themselves so the stored narration keeps
			// matching the audio that was actually synthesized.
			segments := truncateSegments(s.fitter, pc.Job.Segments, target)
			for i := range segments {
				segments[i].EstimatedSeconds = s.fitter.EstimateSpeakingDuration(segments[i].Commentary)
			}
			pc.Job.Segments = segments
			truncated = true
			text = joinCommentary(segments)
			logger.With(logger.Fields{
				"actual_seconds": result.DurationSeconds,
				"target_seconds": target,
			}).Warn(ctx, "voiceover too long for speed adjustment, truncating narration")
			result, err = s.synth.Synthesize(ctx, media.SpeechRequest{Text: text, VoiceID: pc.Job.VoiceID})
		}
		if err != nil {
			return fmt.Errorf("re-synthesize voiceover: %w", err)
		}
	}

	pc.Job.VoiceoverURL = result.AudioURL
	pc.Job.VoiceoverDuration = result.DurationSeconds
	pc.Timings = deriveTimings(pc.Job.Segments, result.DurationSeconds)

	patch := &repository.JobPatch{
		VoiceoverURL:      repository.Ptr(result.AudioURL),
		VoiceoverDuration: repository.Ptr(result.DurationSeconds),
	}
	if truncated {
		patch.Segments = pc.Job.Segments
	}
	return s.store.Update(ctx, pc.Job.ID, patch)
}

// deriveTimings splits the measured audio duration across the segments
// proportionally to their estimated narration lengths, then prefix-sums
// the parts into the timeline intervals every asset is aligned to.
func deriveTimings(segments []domain.SegmentContent, totalSeconds float64) []timing.Interval {
	weights := make([]float64, len(segments))
	for i, seg := range segments {
		if seg.EstimatedSeconds > 0 {
			weights[i] = seg.EstimatedSeconds
		} else {
			weights[i] = 1
		}
	}
	return timing.SegmentTimings(timing.DistributeDuration(totalSeconds, weights))
}

// MusicStep picks a background track matching the plan's mood and tags.
type MusicStep struct {
	selector media.MusicSelector
	store    repository.JobStore
}

func NewMusicStep(selector media.MusicSelector, store repository.JobStore) *MusicStep {
	return &MusicStep{selector: selector, store: store}
}

func (s *MusicStep) Name() string { return "music" }

func (s *MusicStep) Status() domain.JobStatus { return domain.JobStatusSelectingMusic }

func (s *MusicStep) ShouldSkip(pc *Context) bool { return pc.Job.MusicURL != "" }

func (s *MusicStep) Execute(ctx context.Context, pc *Context) error {
	track, err := s.selector.SelectTrack(ctx, pc.Job.Plan.Mood, pc.Job.Plan.MusicTags)
	if err != nil {
		return fmt.Errorf("select music track: %w", err)
	}

	pc.Job.MusicURL = track.URL
	pc.Job.MusicDuration = track.DurationSeconds
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{
		MusicURL:      repository.Ptr(track.URL),
		MusicDuration: repository.Ptr(track.DurationSeconds),
	})
}

// ImageStep generates one still per segment. Generation is deliberately
// sequential with a fixed inter-call delay to respect the image backend's
// rate limits; each URL is persisted as it lands so a restart picks up
// from the last finished segment.
type ImageStep struct {
	images media.ImageGenerator
	store  repository.JobStore
	delay  time.Duration
}

func NewImageStep(images media.ImageGenerator, store repository.JobStore, delay time.Duration) *ImageStep {
	return &ImageStep{images: images, store: store, delay: delay}
}

func (s *ImageStep) Name() string { return "images" }

func (s *ImageStep) Status() domain.JobStatus { return domain.JobStatusGeneratingImages }

func (s *ImageStep) ShouldSkip(pc *Context) bool {
	if pc.Job.RenderStrategy != domain.RenderStrategyImages {
		return true
	}
	return len(pc.Job.Segments) > 0 && len(pc.Job.ImageURLs) >= len(pc.Job.Segments)
}

func (s *ImageStep) Execute(ctx context.Context, pc *Context) error {
	segments := pc.Job.Segments
	urls := append(domain.StringArray{}, pc.Job.ImageURLs...)

	for i := len(urls); i < len(segments); i++ {
		if i > 0 && s.delay > 0 {
			if err := sleepCtx(ctx, s.delay); err != nil {
				return err
			}
		}
		url, err := s.images.GenerateImage(ctx, segments[i].ImagePrompt)
		if err != nil {
			return fmt.Errorf("generate image %d/%d: %w", i+1, len(segments), err)
		}
		urls = append(urls, url)
		if err := s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{ImageURLs: urls}); err != nil {
			return err
		}
	}

	pc.Job.ImageURLs = urls
	logger.With(logger.Fields{logger.FieldCount: len(urls)}).Info(ctx, "segment images generated")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AnimatedVideoStep produces the moving visual track. With a beat script
// it generates one real clip per beat through the video backend, as a
// bounded concurrent batch. Without one it produces image-backed turbo
// clips instead: one "turbo:"-prefixed still per maxClipSeconds interval
// of the voiceover, never touching the video backend.
type AnimatedVideoStep struct {
	videos         media.VideoGenerator
	images         media.ImageGenerator
	store          repository.JobStore
	maxClipSeconds float64
	concurrency    int
}

func NewAnimatedVideoStep(videos media.VideoGenerator, images media.ImageGenerator, store repository.JobStore, maxClipSeconds float64, concurrency int) *AnimatedVideoStep {
	if maxClipSeconds <= 0 {
		maxClipSeconds = 10
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &AnimatedVideoStep{
		videos:         videos,
		images:         images,
		store:          store,
		maxClipSeconds: maxClipSeconds,
		concurrency:    concurrency,
	}
}

func (s *AnimatedVideoStep) Name() string { return "animated-video" }

func (s *AnimatedVideoStep) Status() domain.JobStatus { return domain.JobStatusGeneratingAnimation }

func (s *AnimatedVideoStep) ShouldSkip(pc *Context) bool {
	if pc.Job.RenderStrategy == domain.RenderStrategyImages {
		return true
	}
	return len(pc.Job.ClipURLs) > 0
}

func (s *AnimatedVideoStep) Execute(ctx context.Context, pc *Context) error {
	var (
		urls []string
		err  error
	)
	if pc.Job.RenderStrategy == domain.RenderStrategyAnimated && pc.Job.Plan.HasBeatScript() {
		urls, err = s.generateBeatClips(ctx, pc.Job.Plan)
	} else {
		urls, err = s.generateTurboClips(ctx, pc)
	}
	if err != nil {
		return err
	}

	pc.Job.ClipURLs = urls
	logger.With(logger.Fields{logger.FieldCount: len(urls)}).Info(ctx, "animated clips generated")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{ClipURLs: urls})
}

func (s *AnimatedVideoStep) generateBeatClips(ctx context.Context, plan *domain.ReelPlan) ([]string, error) {
	urls := make([]string, len(plan.Beats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, beat := range plan.Beats {
		g.Go(func() error {
			prompt := beat.Visual
			if prompt == "" {
				prompt = beat.Script
			}
			seconds := beat.Seconds
			if seconds <= 0 || seconds > s.maxClipSeconds {
				seconds = s.maxClipSeconds
			}
			url, err := s.videos.GenerateClip(gctx, media.ClipRequest{
				Prompt:          prompt,
				DurationSeconds: seconds,
				Theme:           plan.Theme,
				Mood:            plan.Mood,
			})
			if err != nil {
				return fmt.Errorf("generate clip %d/%d: %w", i+1, len(plan.Beats), err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *AnimatedVideoStep) generateTurboClips(ctx context.Context, pc *Context) ([]string, error) {
	total := pc.Job.VoiceoverDuration
	if total <= 0 {
		total = pc.Job.Plan.TargetDurationSeconds
	}
	count := int(math.Ceil(total / s.maxClipSeconds))
	if count < 1 {
		count = 1
	}

	segments := pc.Job.Segments
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segment prompts for turbo clips")
	}

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		prompt := segments[i*len(segments)/count].ImagePrompt
		imageURL, err := s.images.GenerateImage(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate turbo still %d/%d: %w", i+1, count, err)
		}
		urls = append(urls, domain.TurboClipPrefix+imageURL)
	}
	return urls, nil
}

// SubtitleStep derives the subtitle file from the finished voiceover.
type SubtitleStep struct {
	subtitles media.SubtitleGenerator
	store     repository.JobStore
}

func NewSubtitleStep(subtitles media.SubtitleGenerator, store repository.JobStore) *SubtitleStep {
	return &SubtitleStep{subtitles: subtitles, store: store}
}

func (s *SubtitleStep) Name() string { return "subtitles" }

func (s *SubtitleStep) Status() domain.JobStatus { return domain.JobStatusGeneratingSubtitles }

func (s *SubtitleStep) ShouldSkip(pc *Context) bool { return pc.Job.SubtitlesURL != "" }

func (s *SubtitleStep) Execute(ctx context.Context, pc *Context) error {
	url, err := s.subtitles.GenerateSubtitles(ctx, pc.Job.VoiceoverURL)
	if err != nil {
		return fmt.Errorf("generate subtitles: %w", err)
	}

	pc.Job.SubtitlesURL = url
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{SubtitlesURL: repository.Ptr(url)})
}

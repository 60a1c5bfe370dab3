package media

import (
	"context"

	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
)

// tryFallback is the single substitution policy: call the primary, and on
// any error log it and call the secondary with identical arguments. The
// secondary's error is the one that propagates. The primary is never
// called twice. Every fallback decorator method routes through here so
// the primary and secondary code paths cannot drift.
func tryFallback[T any](ctx context.Context, component string, primary, secondary func() (T, error)) (T, error) {
	out, err := primary()
	if err == nil {
		return out, nil
	}
	logger.FromContext(ctx).
		WithField(logger.FieldComponent, component).
		WithError(err).
		Warn("Primary backend failed, substituting fallback")
	return secondary()
}

// WithSynthesizerFallback pairs a primary TTS backend with a secondary.
// A nil secondary returns the primary unwrapped.
func WithSynthesizerFallback(primary, secondary Synthesizer) Synthesizer {
	if secondary == nil {
		return primary
	}
	return &fallbackSynthesizer{primary: primary, secondary: secondary}
}

type fallbackSynthesizer struct {
	primary   Synthesizer
	secondary Synthesizer
}

func (f *fallbackSynthesizer) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	return tryFallback(ctx, "tts",
		func() (*SpeechResult, error) { return f.primary.Synthesize(ctx, req) },
		func() (*SpeechResult, error) { return f.secondary.Synthesize(ctx, req) })
}

// WithImageFallback pairs a primary image backend with a secondary.
func WithImageFallback(primary, secondary ImageGenerator) ImageGenerator {
	if secondary == nil {
		return primary
	}
	return &fallbackImageGenerator{primary: primary, secondary: secondary}
}

type fallbackImageGenerator struct {
	primary   ImageGenerator
	secondary ImageGenerator
}

func (f *fallbackImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return tryFallback(ctx, "image",
		func() (string, error) { return f.primary.GenerateImage(ctx, prompt) },
		func() (string, error) { return f.secondary.GenerateImage(ctx, prompt) })
}

// WithVideoFallback pairs a primary video backend with a secondary.
func WithVideoFallback(primary, secondary VideoGenerator) VideoGenerator {
	if secondary == nil {
		return primary
	}
	return &fallbackVideoGenerator{primary: primary, secondary: secondary}
}

type fallbackVideoGenerator struct {
	primary   VideoGenerator
	secondary VideoGenerator
}

func (f *fallbackVideoGenerator) GenerateClip(ctx context.Context, req ClipRequest) (string, error) {
	return tryFallback(ctx, "video",
		func() (string, error) { return f.primary.GenerateClip(ctx, req) },
		func() (string, error) { return f.secondary.GenerateClip(ctx, req) })
}

// WithPlannerFallback pairs a primary LLM planner with a secondary. The
// wrapper advertises the story-mode capability only when the primary has
// it; story calls substitute the secondary only when it has the
// capability too.
func WithPlannerFallback(primary, secondary Planner) Planner {
	if secondary == nil {
		return primary
	}
	base := &fallbackPlanner{primary: primary, secondary: secondary}
	ps, ok := primary.(StoryPlanner)
	if !ok {
		return base
	}
	ss, _ := secondary.(StoryPlanner)
	return &fallbackStoryPlanner{fallbackPlanner: base, primary: ps, secondary: ss}
}

type fallbackPlanner struct {
	primary   Planner
	secondary Planner
}

func (f *fallbackPlanner) PlanReel(ctx context.Context, transcript string, req PlanRequest) (*domain.ReelPlan, error) {
	return tryFallback(ctx, "llm",
		func() (*domain.ReelPlan, error) { return f.primary.PlanReel(ctx, transcript, req) },
		func() (*domain.ReelPlan, error) { return f.secondary.PlanReel(ctx, transcript, req) })
}

func (f *fallbackPlanner) GenerateSegmentContent(ctx context.Context, plan *domain.ReelPlan, transcript string) ([]domain.SegmentContent, error) {
	return tryFallback(ctx, "llm",
		func() ([]domain.SegmentContent, error) {
			return f.primary.GenerateSegmentContent(ctx, plan, transcript)
		},
		func() ([]domain.SegmentContent, error) {
			return f.secondary.GenerateSegmentContent(ctx, plan, transcript)
		})
}

func (f *fallbackPlanner) AdjustCommentaryLength(ctx context.Context, segments []domain.SegmentContent, direction string, targetSeconds float64) ([]domain.SegmentContent, error) {
	return tryFallback(ctx, "llm",
		func() ([]domain.SegmentContent, error) {
			return f.primary.AdjustCommentaryLength(ctx, segments, direction, targetSeconds)
		},
		func() ([]domain.SegmentContent, error) {
			return f.secondary.AdjustCommentaryLength(ctx, segments, direction, targetSeconds)
		})
}

// fallbackStoryPlanner carries the story-mode capability through the
// wrapper. secondary may be nil when only the primary has the capability.
type fallbackStoryPlanner struct {
	*fallbackPlanner
	primary   StoryPlanner
	secondary StoryPlanner
}

func (f *fallbackStoryPlanner) DetectContentMode(ctx context.Context, transcript, description string) (domain.ContentMode, error) {
	if f.secondary == nil {
		return f.primary.DetectContentMode(ctx, transcript, description)
	}
	return tryFallback(ctx, "llm",
		func() (domain.ContentMode, error) { return f.primary.DetectContentMode(ctx, transcript, description) },
		func() (domain.ContentMode, error) { return f.secondary.DetectContentMode(ctx, transcript, description) })
}

func (f *fallbackStoryPlanner) ExtractParableIntent(ctx context.Context, transcript string) (string, error) {
	if f.secondary == nil {
		return f.primary.ExtractParableIntent(ctx, transcript)
	}
	return tryFallback(ctx, "llm",
		func() (string, error) { return f.primary.ExtractParableIntent(ctx, transcript) },
		func() (string, error) { return f.secondary.ExtractParableIntent(ctx, transcript) })
}

func (f *fallbackStoryPlanner) GenerateParableScript(ctx context.Context, intent string, targetSeconds float64) ([]domain.ParableBeat, error) {
	if f.secondary == nil {
		return f.primary.GenerateParableScript(ctx, intent, targetSeconds)
	}
	return tryFallback(ctx, "llm",
		func() ([]domain.ParableBeat, error) {
			return f.primary.GenerateParableScript(ctx, intent, targetSeconds)
		},
		func() ([]domain.ParableBeat, error) {
			return f.secondary.GenerateParableScript(ctx, intent, targetSeconds)
		})
}

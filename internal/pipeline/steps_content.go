package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/media"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/timing"
)

// TranscriptionStep converts the source voice note into text.
type TranscriptionStep struct {
	transcriber media.Transcriber
	store       repository.JobStore
}

func NewTranscriptionStep(transcriber media.Transcriber, store repository.JobStore) *TranscriptionStep {
	return &TranscriptionStep{transcriber: transcriber, store: store}
}

func (s *TranscriptionStep) Name() string { return "transcription" }

func (s *TranscriptionStep) Status() domain.JobStatus { return domain.JobStatusTranscribing }

func (s *TranscriptionStep) ShouldSkip(pc *Context) bool { return pc.Job.Transcript != "" }

func (s *TranscriptionStep) Execute(ctx context.Context, pc *Context) error {
	text, err := s.transcriber.Transcribe(ctx, pc.Job.SourceAudioURL)
	if err != nil {
		return fmt.Errorf("transcribe voice note: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("transcription returned empty text for %s", pc.Job.SourceAudioURL)
	}

	pc.Job.Transcript = text
	logger.With(logger.Fields{logger.FieldSize: len(text)}).Info(ctx, "voice note transcribed")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{Transcript: repository.Ptr(text)})
}

// InstructionStep extracts inline overrides spoken in the note itself.
// It runs without a status transition.
type InstructionStep struct {
	store repository.JobStore
}

func NewInstructionStep(store repository.JobStore) *InstructionStep {
	return &InstructionStep{store: store}
}

func (s *InstructionStep) Name() string { return "instruction-extraction" }

func (s *InstructionStep) Status() domain.JobStatus { return "" }

func (s *InstructionStep) ShouldSkip(pc *Context) bool { return pc.Job.Instructions != nil }

func (s *InstructionStep) Execute(ctx context.Context, pc *Context) error {
	instr := parseInstructions(pc.Job.Transcript, pc.Job.Description)
	pc.Job.Instructions = instr

	patch := &repository.JobPatch{Instructions: instr}
	if instr.AnimatedMode && !pc.Job.AnimatedMode {
		pc.Job.AnimatedMode = true
		patch.AnimatedMode = repository.Ptr(true)
	}

	logger.With(logger.Fields{
		"target_seconds": instr.TargetDurationSeconds,
		"animated":       instr.AnimatedMode,
		"story":          instr.StoryMode,
	}).Info(ctx, "inline instructions extracted")
	return s.store.Update(ctx, pc.Job.ID, patch)
}

// IntentStep distills the lesson a parable must carry. It runs only when
// the planner advertises the story capability; the intent is persisted so
// the planning step can reuse it across restarts.
type IntentStep struct {
	planner media.Planner
	store   repository.JobStore
}

func NewIntentStep(planner media.Planner, store repository.JobStore) *IntentStep {
	return &IntentStep{planner: planner, store: store}
}

func (s *IntentStep) Name() string { return "intent-detection" }

func (s *IntentStep) Status() domain.JobStatus { return domain.JobStatusDetectingIntent }

func (s *IntentStep) ShouldSkip(pc *Context) bool {
	if pc.Job.ParableIntent != "" {
		return true
	}
	_, ok := s.planner.(media.StoryPlanner)
	return !ok
}

func (s *IntentStep) Execute(ctx context.Context, pc *Context) error {
	sp := s.planner.(media.StoryPlanner)
	intent, err := sp.ExtractParableIntent(ctx, pc.Job.Transcript)
	if err != nil {
		return fmt.Errorf("extract parable intent: %w", err)
	}

	pc.Job.ParableIntent = intent
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{ParableIntent: repository.Ptr(intent)})
}

// ContentModeStep decides the content mode and, from it, the single
// render-strategy value every later visual step obeys. Computing the
// strategy exactly once here is what keeps the image and animated-video
// steps from ever disagreeing about which of them should run.
type ContentModeStep struct {
	planner media.Planner
	store   repository.JobStore
}

func NewContentModeStep(planner media.Planner, store repository.JobStore) *ContentModeStep {
	return &ContentModeStep{planner: planner, store: store}
}

func (s *ContentModeStep) Name() string { return "content-mode" }

func (s *ContentModeStep) Status() domain.JobStatus { return domain.JobStatusDetectingMode }

func (s *ContentModeStep) ShouldSkip(pc *Context) bool {
	return pc.Job.ContentMode != "" && pc.Job.RenderStrategy != ""
}

func (s *ContentModeStep) Execute(ctx context.Context, pc *Context) error {
	sp, storyCapable := s.planner.(media.StoryPlanner)

	var mode domain.ContentMode
	switch {
	case pc.Job.Instructions != nil && pc.Job.Instructions.StoryMode:
		mode = domain.ContentModeParable
	case wantsParable(pc.Job.Transcript, pc.Job.Description):
		// Request text already pins the mode; skip the LLM detector.
		mode = domain.ContentModeParable
	case storyCapable:
		detected, err := sp.DetectContentMode(ctx, pc.Job.Transcript, pc.Job.Description)
		if err != nil {
			return fmt.Errorf("detect content mode: %w", err)
		}
		mode = detected
	default:
		mode = domain.ContentModeDirect
	}

	if mode == domain.ContentModeParable && !storyCapable {
		logger.With(logger.Fields{}).Warn(ctx, "planner lacks story capability, degrading to direct-message mode")
		mode = domain.ContentModeDirect
	}

	strategy := resolveRenderStrategy(mode, pc.Job.AnimatedMode)

	pc.Job.ContentMode = mode
	pc.Job.RenderStrategy = strategy
	logger.With(logger.Fields{
		"content_mode":    string(mode),
		"render_strategy": string(strategy),
	}).Info(ctx, "content mode resolved")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{
		ContentMode:    repository.Ptr(mode),
		RenderStrategy: repository.Ptr(strategy),
	})
}

// resolveRenderStrategy is the one place the animated-mode flag and the
// content mode combine into a visual-track decision. Parable scripts get
// generated clips; an animated request without a story gets image-backed
// turbo clips; everything else gets one still per segment.
func resolveRenderStrategy(mode domain.ContentMode, animated bool) domain.RenderStrategy {
	switch {
	case mode == domain.ContentModeParable:
		return domain.RenderStrategyAnimated
	case animated:
		return domain.RenderStrategyTurbo
	default:
		return domain.RenderStrategyImages
	}
}

// PlanningStep produces the reel plan, including the four-beat parable
// script when the mode calls for it.
type PlanningStep struct {
	planner media.Planner
	store   repository.JobStore
}

func NewPlanningStep(planner media.Planner, store repository.JobStore) *PlanningStep {
	return &PlanningStep{planner: planner, store: store}
}

func (s *PlanningStep) Name() string { return "planning" }

func (s *PlanningStep) Status() domain.JobStatus { return domain.JobStatusPlanning }

func (s *PlanningStep) ShouldSkip(pc *Context) bool { return pc.Job.Plan != nil }

func (s *PlanningStep) Execute(ctx context.Context, pc *Context) error {
	req := media.PlanRequest{
		MinSeconds: pc.Job.MinDurationSeconds,
		MaxSeconds: pc.Job.MaxDurationSeconds,
	}
	if instr := pc.Job.Instructions; instr != nil {
		if instr.TargetDurationSeconds > 0 {
			target := clamp(instr.TargetDurationSeconds, req.MinSeconds, req.MaxSeconds)
			req.MinSeconds = target
			req.MaxSeconds = target
		}
		req.MoodOverride = instr.MoodOverride
	}

	plan, err := s.planner.PlanReel(ctx, pc.Job.Transcript, req)
	if err != nil {
		return fmt.Errorf("plan reel: %w", err)
	}

	if pc.Job.ContentMode == domain.ContentModeParable && !plan.HasBeatScript() {
		sp, ok := s.planner.(media.StoryPlanner)
		if !ok {
			return fmt.Errorf("parable mode requires a story-capable planner")
		}
		intent := pc.Job.ParableIntent
		if intent == "" {
			intent = pc.Job.Transcript
		}
		beats, err := sp.GenerateParableScript(ctx, intent, plan.TargetDurationSeconds)
		if err != nil {
			return fmt.Errorf("generate parable script: %w", err)
		}
		plan.Beats = beats
		plan.SegmentCount = len(beats)
	}

	if plan.SegmentCount < 2 {
		return fmt.Errorf("plan has %d segments, need at least 2", plan.SegmentCount)
	}

	pc.Job.Plan = plan
	logger.With(logger.Fields{
		logger.FieldCount: plan.SegmentCount,
		"target_seconds":  plan.TargetDurationSeconds,
		"mood":            plan.Mood,
	}).Info(ctx, "reel planned")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{Plan: plan})
}

// CommentaryStep writes the per-segment narration and enforces the
// duration band: at most maxRewrites rewrite rounds through the planner,
// then a local truncation as the terminal guarantee that the text can
// never overshoot the target.
type CommentaryStep struct {
	planner     media.Planner
	fitter      timing.Fitter
	store       repository.JobStore
	maxRewrites int
}

func NewCommentaryStep(planner media.Planner, fitter timing.Fitter, store repository.JobStore, maxRewrites int) *CommentaryStep {
	if maxRewrites < 0 {
		maxRewrites = 0
	}
	return &CommentaryStep{planner: planner, fitter: fitter, store: store, maxRewrites: maxRewrites}
}

func (s *CommentaryStep) Name() string { return "commentary" }

func (s *CommentaryStep) Status() domain.JobStatus { return domain.JobStatusGeneratingComment }

func (s *CommentaryStep) ShouldSkip(pc *Context) bool { return len(pc.Job.Segments) > 0 }

func (s *CommentaryStep) Execute(ctx context.Context, pc *Context) error {
	plan := pc.Job.Plan
	segments, err := s.planner.GenerateSegmentContent(ctx, plan, pc.Job.Transcript)
	if err != nil {
		return fmt.Errorf("generate segment content: %w", err)
	}

	target := plan.TargetDurationSeconds
	for round := 0; round < s.maxRewrites; round++ {
		adj := s.fitter.NeedsAdjustment(estimateSegments(s.fitter, segments), target)
		if adj == timing.AdjustNone {
			break
		}
		rewritten, err := s.planner.AdjustCommentaryLength(ctx, segments, adj.String(), target)
		if err != nil {
			return fmt.Errorf("adjust commentary length: %w", err)
		}
		segments = rewritten
	}

	// Rewrites are advisory; truncation is the guarantee.
	if s.fitter.NeedsAdjustment(estimateSegments(s.fitter, segments), target) == timing.AdjustShorter {
		segments = truncateSegments(s.fitter, segments, target)
	}

	for i := range segments {
		segments[i].EstimatedSeconds = s.fitter.EstimateSpeakingDuration(segments[i].Commentary)
	}

	pc.Job.Segments = segments
	logger.With(logger.Fields{
		logger.FieldCount: len(segments),
		"estimated":       estimateSegments(s.fitter, segments),
		"target_seconds":  target,
	}).Info(ctx, "commentary generated")
	return s.store.Update(ctx, pc.Job.ID, &repository.JobPatch{Segments: segments})
}

// truncateSegments fits the combined narration under target by shrinking
// each segment to its proportional share of the budget.
func truncateSegments(f timing.Fitter, segments []domain.SegmentContent, target float64) []domain.SegmentContent {
	weights := make([]float64, len(segments))
	for i, seg := range segments {
		weights[i] = f.EstimateSpeakingDuration(seg.Commentary)
	}
	shares := timing.DistributeDuration(target, weights)
	for i := range segments {
		segments[i].Commentary = f.FitTextToDuration(segments[i].Commentary, shares[i])
	}
	return segments
}

func estimateSegments(f timing.Fitter, segments []domain.SegmentContent) float64 {
	total := 0.0
	for _, seg := range segments {
		total += f.EstimateSpeakingDuration(seg.Commentary)
	}
	return total
}

func joinCommentary(segments []domain.SegmentContent) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Commentary); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

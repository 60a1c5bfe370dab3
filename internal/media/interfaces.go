// Package media defines the collaborator interfaces the pipeline consumes
// (transcription, planning LLM, TTS, image/video generation, subtitles,
// rendering, music) and their concrete HTTP clients. Every concrete client
// shares one bounded-retry transport; unreliable backends are paired
// behind the fallback wrappers in this package.
package media

import (
	"context"

	"github.com/voxreel/voxreel/internal/domain"
)

// Transcriber converts a hosted audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// PlanRequest carries the constraints the planner must honor.
type PlanRequest struct {
	MinSeconds   float64
	MaxSeconds   float64
	MoodOverride string
}

// Planner is the base LLM capability set every backend must provide.
type Planner interface {
	// PlanReel produces the structural plan for a transcript.
	PlanReel(ctx context.Context, transcript string, req PlanRequest) (*domain.ReelPlan, error)

	// GenerateSegmentContent writes per-segment commentary and prompts
	// for an existing plan.
	GenerateSegmentContent(ctx context.Context, plan *domain.ReelPlan, transcript string) ([]domain.SegmentContent, error)

	// AdjustCommentaryLength rewrites segment commentary in the given
	// direction ("shorter" or "longer") toward targetSeconds.
	AdjustCommentaryLength(ctx context.Context, segments []domain.SegmentContent, direction string, targetSeconds float64) ([]domain.SegmentContent, error)
}

// StoryPlanner is the optional capability extension for the parable
// sub-flow. Callers discover it with a type assertion on a Planner; steps
// that need it degrade to direct-message mode when it is absent.
type StoryPlanner interface {
	// DetectContentMode classifies whether the note wants literal
	// commentary or a story told around its message.
	DetectContentMode(ctx context.Context, transcript, description string) (domain.ContentMode, error)

	// ExtractParableIntent distills the lesson the story must carry.
	ExtractParableIntent(ctx context.Context, transcript string) (string, error)

	// GenerateParableScript writes a four-beat story script for the intent.
	GenerateParableScript(ctx context.Context, intent string, targetSeconds float64) ([]domain.ParableBeat, error)
}

// SpeechRequest is one synthesis call. Speed of 0 means normal rate.
type SpeechRequest struct {
	Text    string
	VoiceID string
	Speed   float64
}

// SpeechResult is the hosted audio a TTS backend produced.
type SpeechResult struct {
	AudioURL        string
	DurationSeconds float64
}

// Synthesizer turns text into hosted speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}

// ImageGenerator produces one hosted image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ClipRequest describes one animated clip to generate.
type ClipRequest struct {
	Prompt          string
	DurationSeconds float64
	Theme           string
	Mood            string
}

// VideoGenerator produces one hosted video clip per request.
type VideoGenerator interface {
	GenerateClip(ctx context.Context, req ClipRequest) (string, error)
}

// SubtitleGenerator produces a hosted subtitle file for hosted audio.
type SubtitleGenerator interface {
	GenerateSubtitles(ctx context.Context, audioURL string) (string, error)
}

// Renderer assembles the final video from an already-computed manifest.
type Renderer interface {
	Render(ctx context.Context, manifest *domain.RenderManifest) (string, error)
}

// MusicTrack is one background-music candidate.
type MusicTrack struct {
	URL             string
	DurationSeconds float64
	Mood            string
	Tags            []string
}

// MusicSelector picks a background track for a mood and tag set.
type MusicSelector interface {
	SelectTrack(ctx context.Context, mood string, tags []string) (*MusicTrack, error)
}

package domain

// ContentMode selects how commentary is written: literal commentary on the
// transcript, or a four-beat story told around its message.
type ContentMode string

const (
	ContentModeDirect  ContentMode = "direct-message"
	ContentModeParable ContentMode = "parable"
)

// RenderStrategy is the single enumerated decision of which visual track
// the job produces. It is computed exactly once, by the content-mode step,
// so that the image and animated-video steps can never disagree about
// which of them should run.
type RenderStrategy string

const (
	// RenderStrategyImages produces one still image per segment.
	RenderStrategyImages RenderStrategy = "images"
	// RenderStrategyAnimated produces one generated video clip per beat.
	RenderStrategyAnimated RenderStrategy = "animated"
	// RenderStrategyTurbo produces image-backed pan/zoom clips as a cheap
	// substitute for generated video.
	RenderStrategyTurbo RenderStrategy = "turbo"
)

// TurboClipPrefix marks an image URL the render backend turns into a
// pan/zoom clip instead of treating it as a hosted video.
const TurboClipPrefix = "turbo:"

// HookPlan describes the opening moment that earns the first seconds.
type HookPlan struct {
	Text   string `json:"text"`
	Visual string `json:"visual,omitempty"`
}

// ParableBeat is one act of a four-beat story script.
type ParableBeat struct {
	Index   int     `json:"index"`
	Title   string  `json:"title"`
	Script  string  `json:"script"`
	Visual  string  `json:"visual"`
	Seconds float64 `json:"seconds"`
}

// ReelPlan is the planning step's output: the structural decisions every
// later step derives from. Immutable once produced within a run.
type ReelPlan struct {
	TargetDurationSeconds float64       `json:"target_duration_seconds"`
	SegmentCount          int           `json:"segment_count"`
	Mood                  string        `json:"mood"`
	Theme                 string        `json:"theme,omitempty"`
	MusicTags             []string      `json:"music_tags,omitempty"`
	Hook                  *HookPlan     `json:"hook,omitempty"`
	Beats                 []ParableBeat `json:"beats,omitempty"`
}

// HasBeatScript reports whether the plan carries a beat-structured parable
// script, which is what the animated-video path consumes.
func (p *ReelPlan) HasBeatScript() bool {
	return p != nil && len(p.Beats) > 0
}

// SegmentContent is the written material for one beat of the video,
// produced by the commentary step before any asset exists for it.
type SegmentContent struct {
	Index            int     `json:"index"`
	Commentary       string  `json:"commentary"`
	ImagePrompt      string  `json:"image_prompt"`
	Caption          string  `json:"caption,omitempty"`
	Continuity       string  `json:"continuity,omitempty"`
	EstimatedSeconds float64 `json:"estimated_seconds,omitempty"`
	Effect           string  `json:"effect,omitempty"`
}

// Segment is one timed beat of the final video. Index is the timeline
// order; finalized segments partition [0, totalDuration] with no gaps and
// no overlaps.
type Segment struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	AssetURL string  `json:"asset_url,omitempty"`
	Effect   string  `json:"effect,omitempty"`
}

// RenderManifest is everything the render backend needs, assembled purely
// from already-computed fields. The core never inspects render internals.
type RenderManifest struct {
	JobID                string    `json:"job_id"`
	VoiceoverURL         string    `json:"voiceover_url"`
	VoiceoverDuration    float64   `json:"voiceover_duration"`
	MusicURL             string    `json:"music_url,omitempty"`
	MusicDurationSeconds float64   `json:"music_duration_seconds,omitempty"`
	SubtitlesURL         string    `json:"subtitles_url,omitempty"`
	Segments             []Segment `json:"segments"`
	AnimatedVideoURLs    []string  `json:"animated_video_urls,omitempty"`
	TotalDuration        float64   `json:"duration_seconds"`
	LogoURL              string    `json:"logo_url,omitempty"`
	LogoPosition         string    `json:"logo_position,omitempty"`
}

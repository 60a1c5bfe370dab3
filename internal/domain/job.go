package domain

import (
	"time"
)

// JobStatus represents the position of a video job in its lifecycle.
// The pipeline walks the statuses linearly; Failed and Completed are terminal.
type JobStatus string

const (
	JobStatusPending             JobStatus = "pending"
	JobStatusTranscribing        JobStatus = "transcribing"
	JobStatusDetectingIntent     JobStatus = "detecting_intent"
	JobStatusDetectingMode       JobStatus = "detecting_content_mode"
	JobStatusPlanning            JobStatus = "planning"
	JobStatusGeneratingComment   JobStatus = "generating_commentary"
	JobStatusSynthesizingVoice   JobStatus = "synthesizing_voiceover"
	JobStatusSelectingMusic      JobStatus = "selecting_music"
	JobStatusGeneratingImages    JobStatus = "generating_images"
	JobStatusGeneratingAnimation JobStatus = "generating_animated_video"
	JobStatusGeneratingSubtitles JobStatus = "generating_subtitles"
	JobStatusBuildingManifest    JobStatus = "building_manifest"
	JobStatusRendering           JobStatus = "rendering"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusFailed              JobStatus = "failed"
)

// IsTerminal reports whether the status ends the job lifecycle.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// VideoJob is the durable unit of work: one request to turn a voice note
// into a finished short-form video. Each accumulated field is written by
// exactly one pipeline step and read by later steps; a populated field
// means the owning step is already done and may be skipped on resume.
type VideoJob struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Status      JobStatus `gorm:"default:pending;index" json:"status"`
	CurrentStep string    `json:"current_step,omitempty"`

	// Request inputs.
	SourceAudioURL     string  `gorm:"not null" json:"source_audio_url"`
	Description        string  `json:"description,omitempty"`
	CallbackURL        string  `json:"callback_url,omitempty"`
	MinDurationSeconds float64 `gorm:"default:10" json:"min_duration_seconds"`
	MaxDurationSeconds float64 `gorm:"default:90" json:"max_duration_seconds"`
	AnimatedMode       bool    `gorm:"default:false" json:"animated_mode"`
	VoiceID            string  `json:"voice_id,omitempty"`

	// Accumulated step outputs.
	Transcript        string             `json:"transcript,omitempty"`
	Instructions      *JobInstructions   `gorm:"type:text" json:"instructions,omitempty"`
	ParableIntent     string             `json:"parable_intent,omitempty"`
	ContentMode       ContentMode        `json:"content_mode,omitempty"`
	RenderStrategy    RenderStrategy     `json:"render_strategy,omitempty"`
	Plan              *ReelPlan          `gorm:"type:text" json:"plan,omitempty"`
	Segments          SegmentContentList `gorm:"type:text" json:"segments,omitempty"`
	VoiceoverURL      string             `json:"voiceover_url,omitempty"`
	VoiceoverDuration float64            `json:"voiceover_duration,omitempty"`
	MusicURL          string             `json:"music_url,omitempty"`
	MusicDuration     float64            `json:"music_duration,omitempty"`
	ImageURLs         StringArray        `gorm:"type:text" json:"image_urls,omitempty"`
	ClipURLs          StringArray        `gorm:"type:text" json:"clip_urls,omitempty"`
	SubtitlesURL      string             `json:"subtitles_url,omitempty"`
	FinalVideoURL     string             `json:"final_video_url,omitempty"`
	Error             string             `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for VideoJob.
func (VideoJob) TableName() string {
	return "video_jobs"
}

// JobInstructions holds overrides extracted from the voice note itself,
// e.g. "make it a 1 minute animation video" spoken before the content.
type JobInstructions struct {
	TargetDurationSeconds float64 `json:"target_duration_seconds,omitempty"`
	AnimatedMode          bool    `json:"animated_mode,omitempty"`
	StoryMode             bool    `json:"story_mode,omitempty"`
	MoodOverride          string  `json:"mood_override,omitempty"`
}

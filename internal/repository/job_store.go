package repository

import (
	"context"
	"errors"
	"time"

	"github.com/voxreel/voxreel/internal/domain"
)

// ErrJobNotFound is returned when a job id is unknown to the store.
// Callers must check; store operations never panic on missing ids.
var ErrJobNotFound = errors.New("job not found")

// JobStore is the persistence contract for video jobs. The pipeline assumes
// a single worker per job id at a time; every mutation is a self-contained
// read-merge-write flushed before the call returns, so a process restart
// resumes from the last persisted patch.
type JobStore interface {
	// Create assigns a fresh id (when unset), applies duration-range
	// defaults, and persists immediately.
	Create(ctx context.Context, job *domain.VideoJob) error

	// Get returns the job or ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.VideoJob, error)

	// UpdateStatus transitions the job and records an optional
	// human-readable step label.
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, stepLabel string) error

	// Update merges a partial patch and bumps UpdatedAt. Nil patch fields
	// leave the stored value untouched; set fields win unconditionally.
	Update(ctx context.Context, id string, patch *JobPatch) error

	// Fail sets status failed with the message. Best effort: storage
	// errors are logged, never returned.
	Fail(ctx context.Context, id string, message string)
}

// DurationDefaults is the target-duration range filled in at creation
// when the caller did not supply one. Zero fields fall back to the
// built-in 10-90 second range.
type DurationDefaults struct {
	MinSeconds float64
	MaxSeconds float64
}

func (d DurationDefaults) apply(job *domain.VideoJob) {
	min, max := d.MinSeconds, d.MaxSeconds
	if min <= 0 {
		min = 10
	}
	if max <= 0 {
		max = 90
	}
	if job.MinDurationSeconds <= 0 {
		job.MinDurationSeconds = min
	}
	if job.MaxDurationSeconds <= 0 {
		job.MaxDurationSeconds = max
	}
	if job.MaxDurationSeconds < job.MinDurationSeconds {
		job.MaxDurationSeconds = job.MinDurationSeconds
	}
}

// JobPatch is a partial update to a VideoJob. Each pipeline step writes
// only the fields it owns.
type JobPatch struct {
	Status             *domain.JobStatus
	CurrentStep        *string
	MinDurationSeconds *float64
	MaxDurationSeconds *float64
	AnimatedMode       *bool
	Transcript         *string
	Instructions       *domain.JobInstructions
	ParableIntent      *string
	ContentMode        *domain.ContentMode
	RenderStrategy     *domain.RenderStrategy
	Plan               *domain.ReelPlan
	Segments           domain.SegmentContentList
	VoiceoverURL       *string
	VoiceoverDuration  *float64
	MusicURL           *string
	MusicDuration      *float64
	ImageURLs          domain.StringArray
	ClipURLs           domain.StringArray
	SubtitlesURL       *string
	FinalVideoURL      *string
	Error              *string
	CompletedAt        *time.Time
}

// apply merges the patch into job. Last writer wins per field.
func (p *JobPatch) apply(job *domain.VideoJob) {
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.CurrentStep != nil {
		job.CurrentStep = *p.CurrentStep
	}
	if p.MinDurationSeconds != nil {
		job.MinDurationSeconds = *p.MinDurationSeconds
	}
	if p.MaxDurationSeconds != nil {
		job.MaxDurationSeconds = *p.MaxDurationSeconds
	}
	if p.AnimatedMode != nil {
		job.AnimatedMode = *p.AnimatedMode
	}
	if p.Transcript != nil {
		job.Transcript = *p.Transcript
	}
	if p.Instructions != nil {
		job.Instructions = p.Instructions
	}
	if p.ParableIntent != nil {
		job.ParableIntent = *p.ParableIntent
	}
	if p.ContentMode != nil {
		job.ContentMode = *p.ContentMode
	}
	if p.RenderStrategy != nil {
		job.RenderStrategy = *p.RenderStrategy
	}
	if p.Plan != nil {
		job.Plan = p.Plan
	}
	if p.Segments != nil {
		job.Segments = p.Segments
	}
	if p.VoiceoverURL != nil {
		job.VoiceoverURL = *p.VoiceoverURL
	}
	if p.VoiceoverDuration != nil {
		job.VoiceoverDuration = *p.VoiceoverDuration
	}
	if p.MusicURL != nil {
		job.MusicURL = *p.MusicURL
	}
	if p.MusicDuration != nil {
		job.MusicDuration = *p.MusicDuration
	}
	if p.ImageURLs != nil {
		job.ImageURLs = p.ImageURLs
	}
	if p.ClipURLs != nil {
		job.ClipURLs = p.ClipURLs
	}
	if p.SubtitlesURL != nil {
		job.SubtitlesURL = *p.SubtitlesURL
	}
	if p.FinalVideoURL != nil {
		job.FinalVideoURL = *p.FinalVideoURL
	}
	if p.Error != nil {
		job.Error = *p.Error
	}
	if p.CompletedAt != nil {
		job.CompletedAt = p.CompletedAt
	}
}

// Ptr returns a pointer to v. Convenience for building patches.
func Ptr[T any](v T) *T {
	return &v
}

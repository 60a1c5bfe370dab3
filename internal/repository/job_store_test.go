package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/voxreel/voxreel/internal/domain"
)

func TestMemoryJobStoreCreateDefaults(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{SourceAudioURL: "https://example.com/note.ogg"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if job.ID == "" {
		t.Error("Create did not assign an id")
	}
	if job.Status != domain.JobStatusPending {
		t.Errorf("status = %q, want %q", job.Status, domain.JobStatusPending)
	}
	if job.MinDurationSeconds != 10 || job.MaxDurationSeconds != 90 {
		t.Errorf("duration range = [%v, %v], want [10, 90]",
			job.MinDurationSeconds, job.MaxDurationSeconds)
	}
}

func TestMemoryJobStoreKeepsCallerRange(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{
		SourceAudioURL:     "https://example.com/note.ogg",
		MinDurationSeconds: 30,
		MaxDurationSeconds: 45,
	}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.MinDurationSeconds != 30 || stored.MaxDurationSeconds != 45 {
		t.Errorf("duration range = [%v, %v], want [30, 45]",
			stored.MinDurationSeconds, stored.MaxDurationSeconds)
	}
}

func TestDurationDefaultsApply(t *testing.T) {
	tests := []struct {
		name     string
		defaults DurationDefaults
		job      domain.VideoJob
		wantMin  float64
		wantMax  float64
	}{
		{
			name:    "zero value falls back to builtin range",
			wantMin: 10, wantMax: 90,
		},
		{
			name:     "configured range fills missing fields",
			defaults: DurationDefaults{MinSeconds: 20, MaxSeconds: 50},
			wantMin:  20, wantMax: 50,
		},
		{
			name:     "caller range wins over configuration",
			defaults: DurationDefaults{MinSeconds: 20, MaxSeconds: 50},
			job:      domain.VideoJob{MinDurationSeconds: 5, MaxDurationSeconds: 15},
			wantMin:  5, wantMax: 15,
		},
		{
			name:     "max raised to min when inverted",
			defaults: DurationDefaults{MinSeconds: 60, MaxSeconds: 30},
			wantMin:  60, wantMax: 60,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := tt.job
			tt.defaults.apply(&job)
			if job.MinDurationSeconds != tt.wantMin || job.MaxDurationSeconds != tt.wantMax {
				t.Errorf("duration range = [%v, %v], want [%v, %v]",
					job.MinDurationSeconds, job.MaxDurationSeconds, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestMemoryJobStoreNotFound(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Get(missing) = %v, want ErrJobNotFound", err)
	}
	if err := store.Update(ctx, "missing", &JobPatch{Transcript: Ptr("x")}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Update(missing) = %v, want ErrJobNotFound", err)
	}
	// Fail on a missing job must not panic.
	store.Fail(ctx, "missing", "boom")
}

// Last writer wins and UpdatedAt strictly increases across consecutive
// updates of the same field.
func TestMemoryJobStoreLastWriterWins(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{SourceAudioURL: "https://example.com/note.ogg"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, job.ID, &JobPatch{Transcript: Ptr("first")}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	after1, _ := store.Get(ctx, job.ID)

	if err := store.Update(ctx, job.ID, &JobPatch{Transcript: Ptr("second")}); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	after2, _ := store.Get(ctx, job.ID)

	if after2.Transcript != "second" {
		t.Errorf("transcript = %q, want %q", after2.Transcript, "second")
	}
	if !after2.UpdatedAt.After(after1.UpdatedAt) {
		t.Errorf("UpdatedAt did not strictly increase: %v then %v",
			after1.UpdatedAt, after2.UpdatedAt)
	}
}

func TestMemoryJobStorePatchMerge(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{SourceAudioURL: "https://example.com/note.ogg"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, job.ID, &JobPatch{Transcript: Ptr("hello world")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	mode := domain.ContentModeParable
	if err := store.Update(ctx, job.ID, &JobPatch{ContentMode: &mode}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, _ := store.Get(ctx, job.ID)
	if stored.Transcript != "hello world" {
		t.Errorf("transcript clobbered by unrelated patch: %q", stored.Transcript)
	}
	if stored.ContentMode != domain.ContentModeParable {
		t.Errorf("content mode = %q, want parable", stored.ContentMode)
	}
}

func TestMemoryJobStoreFail(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{SourceAudioURL: "https://example.com/note.ogg"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store.Fail(ctx, job.ID, "tts exploded")

	stored, _ := store.Get(ctx, job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Errorf("status = %q, want failed", stored.Status)
	}
	if stored.Error != "tts exploded" {
		t.Errorf("error = %q, want %q", stored.Error, "tts exploded")
	}
	if stored.FinalVideoURL != "" {
		t.Errorf("failed job has a final video URL: %q", stored.FinalVideoURL)
	}
}

func TestMemoryJobStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	job := &domain.VideoJob{SourceAudioURL: "https://example.com/note.ogg"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, _ := store.Get(ctx, job.ID)
	got.Transcript = "mutated outside the store"

	again, _ := store.Get(ctx, job.ID)
	if again.Transcript != "" {
		t.Errorf("external mutation leaked into the store: %q", again.Transcript)
	}
}

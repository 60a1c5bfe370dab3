package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
)

// MemoryJobStore is an in-memory JobStore used by tests and local runs.
// It honors the same merge and monotonic-UpdatedAt semantics as the
// durable store.
type MemoryJobStore struct {
	mu       sync.Mutex
	jobs     map[string]*domain.VideoJob
	defaults DurationDefaults
}

// NewMemoryJobStore creates an empty in-memory store using the built-in
// duration defaults.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*domain.VideoJob)}
}

// Create assigns a fresh id and duration defaults, then stores a copy.
func (s *MemoryJobStore) Create(ctx context.Context, job *domain.VideoJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	s.defaults.apply(job)
	if job.CreatedAt.IsZero() {
		job.CreatedAt = nextUpdateTime(job.CreatedAt)
	}
	job.UpdatedAt = job.CreatedAt

	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

// Get returns a copy of the job or ErrJobNotFound.
func (s *MemoryJobStore) Get(ctx context.Context, id string) (*domain.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

// UpdateStatus transitions the job status and step label.
func (s *MemoryJobStore) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, stepLabel string) error {
	return s.Update(ctx, id, &JobPatch{
		Status:      &status,
		CurrentStep: &stepLabel,
	})
}

// Update merges the patch and bumps UpdatedAt, strictly increasing.
func (s *MemoryJobStore) Update(ctx context.Context, id string, patch *JobPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	patch.apply(job)
	job.UpdatedAt = nextUpdateTime(job.UpdatedAt)
	return nil
}

// Fail marks the job failed with the message; errors are logged, not returned.
func (s *MemoryJobStore) Fail(ctx context.Context, id string, message string) {
	status := domain.JobStatusFailed
	if err := s.Update(ctx, id, &JobPatch{Status: &status, Error: &message}); err != nil {
		logger.FromContext(ctx).WithField(logger.FieldJobID, id).WithError(err).Error("Failed to persist job failure")
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"gorm.io/gorm"
)

// GormJobStore is the durable JobStore backed by SQLite or PostgreSQL.
// Each mutation is its own atomic write; there is no batching or
// write-ahead queue, by design.
type GormJobStore struct {
	db       *gorm.DB
	log      *logger.Logger
	defaults DurationDefaults
}

// NewGormJobStore creates a JobStore bound to db.
// Parameters:
//   - db: GORM database handle used for queries.
//   - log: logger for best-effort failure reporting.
//   - defaults: duration range for jobs created without one; zero fields
//     fall back to the built-in range.
//
// Returns:
//   - *GormJobStore: store instance bound to db.
func NewGormJobStore(db *gorm.DB, log *logger.Logger, defaults DurationDefaults) *GormJobStore {
	if log == nil {
		log = logger.GetDefault()
	}
	return &GormJobStore{db: db, log: log, defaults: defaults}
}

// Create assigns a fresh id and duration defaults, then persists the job.
func (s *GormJobStore) Create(ctx context.Context, job *domain.VideoJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	s.defaults.apply(job)
	return s.db.WithContext(ctx).Create(job).Error
}

// Get retrieves a job by id or returns ErrJobNotFound.
func (s *GormJobStore) Get(ctx context.Context, id string) (*domain.VideoJob, error) {
	var job domain.VideoJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateStatus transitions the job status and step label.
func (s *GormJobStore) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, stepLabel string) error {
	return s.Update(ctx, id, &JobPatch{
		Status:      &status,
		CurrentStep: &stepLabel,
	})
}

// Update merges the patch into the stored record and refreshes UpdatedAt.
// Read-merge-write with no cross-job locking: the design assumes no two
// workers ever operate on the same job id concurrently.
func (s *GormJobStore) Update(ctx context.Context, id string, patch *JobPatch) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	patch.apply(job)
	job.UpdatedAt = nextUpdateTime(job.UpdatedAt)
	return s.db.WithContext(ctx).Save(job).Error
}

// Fail marks the job failed with the message. Storage errors are logged
// and swallowed; failing a job must never raise another failure.
func (s *GormJobStore) Fail(ctx context.Context, id string, message string) {
	status := domain.JobStatusFailed
	err := s.Update(ctx, id, &JobPatch{
		Status: &status,
		Error:  &message,
	})
	if err != nil {
		s.log.WithField(logger.FieldJobID, id).WithError(err).Error("Failed to persist job failure")
	}
}

// nextUpdateTime guarantees UpdatedAt strictly increases even when two
// mutations land inside the clock's resolution.
func nextUpdateTime(prev time.Time) time.Time {
	now := time.Now()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}

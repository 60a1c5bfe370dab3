package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/storage"
)

// JobRunner starts (or resumes) pipeline work for a job id.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

// JobHandler handles video job endpoints.
type JobHandler struct {
	store   repository.JobStore
	storage storage.ObjectStorage
	runner  JobRunner
}

// CreateJobRequest is the JSON body for audio already hosted elsewhere.
// Multipart uploads carry the same fields as form values plus the
// voice_note file.
type CreateJobRequest struct {
	AudioURL           string  `json:"audio_url" form:"audio_url"`
	Description        string  `json:"description" form:"description"`
	CallbackURL        string  `json:"callback_url" form:"callback_url"`
	MinDurationSeconds float64 `json:"min_duration_seconds" form:"min_duration_seconds"`
	MaxDurationSeconds float64 `json:"max_duration_seconds" form:"max_duration_seconds"`
	AnimatedMode       bool    `json:"animated_mode" form:"animated_mode"`
	VoiceID            string  `json:"voice_id" form:"voice_id"`
}

// NewJobHandler creates a new job handler.
// Parameters:
//   - store: job persistence.
//   - objectStorage: destination for uploaded voice notes.
//   - runner: pipeline runner invoked asynchronously per accepted job.
//
// Returns:
//   - *JobHandler: initialized handler.
func NewJobHandler(store repository.JobStore, objectStorage storage.ObjectStorage, runner JobRunner) *JobHandler {
	return &JobHandler{store: store, storage: objectStorage, runner: runner}
}

// CreateJob accepts a new video job and starts the pipeline in the
// background. Returns 202 with the persisted record.
func (h *JobHandler) CreateJob(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateJobRequest
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid form: %v", err)})
			return
		}
		if req.AudioURL == "" {
			url, err := h.uploadVoiceNote(c)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			req.AudioURL = url
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
			return
		}
	}

	if req.AudioURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_url or voice_note file is required"})
		return
	}
	if req.MinDurationSeconds < 0 || req.MaxDurationSeconds < 0 ||
		(req.MaxDurationSeconds > 0 && req.MinDurationSeconds > req.MaxDurationSeconds) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration range"})
		return
	}

	job := &domain.VideoJob{
		SourceAudioURL:     req.AudioURL,
		Description:        req.Description,
		CallbackURL:        req.CallbackURL,
		MinDurationSeconds: req.MinDurationSeconds,
		MaxDurationSeconds: req.MaxDurationSeconds,
		AnimatedMode:       req.AnimatedMode,
		VoiceID:            req.VoiceID,
	}
	if err := h.store.Create(ctx, job); err != nil {
		logger.CtxError(ctx, "Failed to create job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	// The request context dies with the response; the pipeline gets its own.
	runCtx := logger.SetJobID(context.Background(), job.ID)
	go func() {
		if err := h.runner.Run(runCtx, job.ID); err != nil {
			logger.CtxError(runCtx, "Job run finished with error: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, job)
}

// GetJob returns the current state of a job.
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")
	job, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		logger.CtxError(c.Request.Context(), "Failed to load job %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// uploadVoiceNote stores the multipart voice_note file and returns its
// public URL.
func (h *JobHandler) uploadVoiceNote(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("voice_note")
	if err != nil {
		return "", fmt.Errorf("voice_note file is required: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".mp3"
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open voice_note: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("voice-notes/%s%s", uuid.New().String(), ext)
	if err := h.storage.Upload(c.Request.Context(), key, file, fileHeader.Size, contentType); err != nil {
		return "", fmt.Errorf("upload voice_note: %w", err)
	}
	return h.storage.GetURL(key), nil
}

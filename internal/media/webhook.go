package media

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/logger"
)

// WebhookNotifier posts job outcome notifications to the callback URL a
// job was created with. Notification failures are logged and swallowed;
// they never fail the job.
type WebhookNotifier struct {
	client *resty.Client
}

// NewWebhookNotifier creates a notifier with the given request timeout.
func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &WebhookNotifier{client: client}
}

type webhookPayload struct {
	JobID    string          `json:"jobId"`
	Status   string          `json:"status"`
	VideoURL string          `json:"videoUrl,omitempty"`
	Error    string          `json:"error,omitempty"`
	Metadata webhookMetadata `json:"metadata"`
}

type webhookMetadata struct {
	Duration    float64 `json:"duration,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	CompletedAt string  `json:"completedAt,omitempty"`
}

// Notify sends the job's terminal state to its callback URL, if any.
func (n *WebhookNotifier) Notify(ctx context.Context, job *domain.VideoJob) {
	if job.CallbackURL == "" {
		return
	}

	payload := webhookPayload{
		JobID:    job.ID,
		Status:   string(job.Status),
		VideoURL: job.FinalVideoURL,
		Error:    job.Error,
		Metadata: webhookMetadata{
			Duration:  job.VoiceoverDuration,
			CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	if job.CompletedAt != nil {
		payload.Metadata.CompletedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(job.CallbackURL)

	log := logger.FromContext(ctx).WithField(logger.FieldJobID, job.ID)
	if err != nil {
		log.WithError(err).Warn("Webhook notification failed")
		return
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.WithField(logger.FieldStatus, resp.StatusCode()).Warn("Webhook notification rejected")
	}
}

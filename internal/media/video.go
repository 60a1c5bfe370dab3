package media

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
)

// EndpointVideoGenerator calls a hosted text-to-video endpoint that turns
// a clip request into a hosted video clip.
type EndpointVideoGenerator struct {
	client   *resty.Client
	endpoint string
	model    string
}

// NewEndpointVideoGenerator creates a video-generation client.
func NewEndpointVideoGenerator(cfg *config.BackendConfig) *EndpointVideoGenerator {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &EndpointVideoGenerator{
		client:   client,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

type clipRequest struct {
	Prompt          string  `json:"prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	Theme           string  `json:"theme,omitempty"`
	Mood            string  `json:"mood,omitempty"`
	Model           string  `json:"model,omitempty"`
}

type clipResponse struct {
	VideoURL string `json:"video_url"`
	Error    string `json:"error,omitempty"`
}

// GenerateClip produces one hosted video clip.
func (g *EndpointVideoGenerator) GenerateClip(ctx context.Context, req ClipRequest) (string, error) {
	var resp clipResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(clipRequest{
			Prompt:          req.Prompt,
			DurationSeconds: req.DurationSeconds,
			Theme:           req.Theme,
			Mood:            req.Mood,
			Model:           g.model,
		}).
		SetResult(&resp).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call video API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("video API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("video API error: %s", resp.Error)
	}
	if resp.VideoURL == "" {
		return "", fmt.Errorf("video API returned no URL")
	}
	return resp.VideoURL, nil
}

package media

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/domain"
)

// EndpointRenderer posts the assembled manifest to a hosted FFmpeg render
// endpoint and returns the finished video URL. The manifest is built
// entirely from already-computed fields; render internals stay remote.
type EndpointRenderer struct {
	client   *resty.Client
	endpoint string
}

// NewEndpointRenderer creates a render client.
func NewEndpointRenderer(cfg *config.BackendConfig) *EndpointRenderer {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &EndpointRenderer{
		client:   client,
		endpoint: cfg.Endpoint,
	}
}

type renderResponse struct {
	VideoURL string `json:"video_url"`
	Error    string `json:"error,omitempty"`
}

// Render submits the manifest and returns the final video URL.
func (r *EndpointRenderer) Render(ctx context.Context, manifest *domain.RenderManifest) (string, error) {
	var resp renderResponse
	httpResp, err := r.client.R().
		SetContext(ctx).
		SetBody(manifest).
		SetResult(&resp).
		Post(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call render API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("render API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("render API error: %s", resp.Error)
	}
	if resp.VideoURL == "" {
		return "", fmt.Errorf("render API returned no video URL")
	}
	return resp.VideoURL, nil
}

package media

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
)

// EndpointImageGenerator calls a hosted diffusion endpoint that turns a
// prompt into a hosted image.
type EndpointImageGenerator struct {
	client   *resty.Client
	endpoint string
	model    string
}

// NewEndpointImageGenerator creates an image-generation client.
func NewEndpointImageGenerator(cfg *config.BackendConfig) *EndpointImageGenerator {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &EndpointImageGenerator{
		client:   client,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

type imageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type imageResponse struct {
	ImageURL string `json:"image_url"`
	Error    string `json:"error,omitempty"`
}

// GenerateImage produces one hosted image for the prompt.
func (g *EndpointImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var resp imageResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(imageRequest{Prompt: prompt, Model: g.model}).
		SetResult(&resp).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call image API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("image API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("image API error: %s", resp.Error)
	}
	if resp.ImageURL == "" {
		return "", fmt.Errorf("image API returned no URL")
	}
	return resp.ImageURL, nil
}

package media

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
)

// EndpointSubtitleGenerator calls a hosted alignment endpoint that turns
// hosted speech audio into a hosted subtitle file.
type EndpointSubtitleGenerator struct {
	client   *resty.Client
	endpoint string
}

// NewEndpointSubtitleGenerator creates a subtitle client.
func NewEndpointSubtitleGenerator(cfg *config.BackendConfig) *EndpointSubtitleGenerator {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &EndpointSubtitleGenerator{
		client:   client,
		endpoint: cfg.Endpoint,
	}
}

type subtitleRequest struct {
	AudioURL string `json:"audio_url"`
}

type subtitleResponse struct {
	SubtitlesURL string `json:"subtitles_url"`
	Error        string `json:"error,omitempty"`
}

// GenerateSubtitles produces a hosted subtitle file for the audio.
func (g *EndpointSubtitleGenerator) GenerateSubtitles(ctx context.Context, audioURL string) (string, error) {
	var resp subtitleResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(subtitleRequest{AudioURL: audioURL}).
		SetResult(&resp).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call subtitle API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("subtitle API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("subtitle API error: %s", resp.Error)
	}
	if resp.SubtitlesURL == "" {
		return "", fmt.Errorf("subtitle API returned no URL")
	}
	return resp.SubtitlesURL, nil
}

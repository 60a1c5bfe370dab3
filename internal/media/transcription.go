package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
)

// WhisperTranscriber calls a hosted Whisper-style endpoint that accepts a
// URL to the audio and returns the transcript text.
type WhisperTranscriber struct {
	client   *resty.Client
	endpoint string
	model    string
}

// NewWhisperTranscriber creates a transcription client.
func NewWhisperTranscriber(cfg *config.BackendConfig) *WhisperTranscriber {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &WhisperTranscriber{
		client:   client,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

type transcribeRequest struct {
	AudioURL string `json:"audio_url"`
	Model    string `json:"model,omitempty"`
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Transcribe converts the hosted audio file into text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	var resp transcribeResponse
	httpResp, err := t.client.R().
		SetContext(ctx).
		SetBody(transcribeRequest{AudioURL: audioURL, Model: t.model}).
		SetResult(&resp).
		Post(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call transcription API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("transcription API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("transcription API error: %s", resp.Error)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("transcription returned empty text")
	}
	return resp.Text, nil
}

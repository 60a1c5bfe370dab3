package media

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
)

// EndpointSynthesizer calls a hosted TTS endpoint that synthesizes speech
// and returns a URL to the audio plus its measured duration.
type EndpointSynthesizer struct {
	client   *resty.Client
	endpoint string
	voiceID  string
}

// NewEndpointSynthesizer creates a TTS client. cfg.Model carries the
// default voice id for backends that name voices like models.
func NewEndpointSynthesizer(cfg *config.BackendConfig) *EndpointSynthesizer {
	client := newRetryingClient(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &EndpointSynthesizer{
		client:   client,
		endpoint: cfg.Endpoint,
		voiceID:  cfg.Model,
	}
}

type synthesizeRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
}

type synthesizeResponse struct {
	AudioURL        string  `json:"audio_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Error           string  `json:"error,omitempty"`
}

// Synthesize turns text into hosted speech audio.
func (s *EndpointSynthesizer) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	voice := req.VoiceID
	if voice == "" {
		voice = s.voiceID
	}

	var resp synthesizeResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(synthesizeRequest{Text: req.Text, VoiceID: voice, Speed: req.Speed}).
		SetResult(&resp).
		Post(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call TTS API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("TTS API returned error: HTTP %d: %s",
			httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("TTS API error: %s", resp.Error)
	}
	if resp.AudioURL == "" {
		return nil, fmt.Errorf("TTS returned no audio URL")
	}
	if resp.DurationSeconds <= 0 {
		return nil, fmt.Errorf("TTS returned invalid duration %.2f", resp.DurationSeconds)
	}

	return &SpeechResult{
		AudioURL:        resp.AudioURL,
		DurationSeconds: resp.DurationSeconds,
	}, nil
}

package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/prompts"
)

// LLMPlanner implements Planner and StoryPlanner against an
// OpenAI-compatible chat completion endpoint.
type LLMPlanner struct {
	client   *resty.Client
	model    string
	endpoint string
}

// NewLLMPlanner creates a planner client.
// Parameters:
//   - cfg: backend configuration including endpoint, model, and API key.
//
// Returns:
//   - *LLMPlanner: initialized planner client.
func NewLLMPlanner(cfg *config.BackendConfig) *LLMPlanner {
	client := newRetryingClient(cfg.Timeout)
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &LLMPlanner{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// complete sends one system+user exchange and returns the raw content.
func (p *LLMPlanner) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	req := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}

	var resp chatResponse
	httpResp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", fmt.Errorf("LLM API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("LLM API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM API (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

// PlanReel produces the structural plan for a transcript.
func (p *LLMPlanner) PlanReel(ctx context.Context, transcript string, req PlanRequest) (*domain.ReelPlan, error) {
	moodLine := ""
	if req.MoodOverride != "" {
		moodLine = " Required mood: " + req.MoodOverride + "."
	}
	user := fmt.Sprintf(prompts.PlanUserPrompt, req.MinSeconds, req.MaxSeconds, moodLine, transcript)

	content, err := p.complete(ctx, prompts.PlanSystemPrompt, user, 800)
	if err != nil {
		return nil, err
	}

	var plan domain.ReelPlan
	if err := decodeJSONResponse(content, &plan); err != nil {
		return nil, fmt.Errorf("malformed plan response: %w", err)
	}
	if plan.SegmentCount < 2 {
		return nil, fmt.Errorf("plan has %d segments, need at least 2", plan.SegmentCount)
	}
	if plan.TargetDurationSeconds < req.MinSeconds || plan.TargetDurationSeconds > req.MaxSeconds {
		return nil, fmt.Errorf("plan target %.1fs outside requested range %.0f-%.0fs",
			plan.TargetDurationSeconds, req.MinSeconds, req.MaxSeconds)
	}
	if req.MoodOverride != "" {
		plan.Mood = req.MoodOverride
	}
	return &plan, nil
}

type segmentListResponse struct {
	Segments []domain.SegmentContent `json:"segments"`
}

// GenerateSegmentContent writes per-segment commentary for a plan.
func (p *LLMPlanner) GenerateSegmentContent(ctx context.Context, plan *domain.ReelPlan, transcript string) ([]domain.SegmentContent, error) {
	hook := ""
	if plan.Hook != nil {
		hook = plan.Hook.Text
	}
	user := fmt.Sprintf(prompts.SegmentUserPrompt,
		plan.SegmentCount, plan.TargetDurationSeconds, plan.Mood, plan.Theme, hook, transcript)

	content, err := p.complete(ctx, prompts.SegmentSystemPrompt, user, 2000)
	if err != nil {
		return nil, err
	}

	var resp segmentListResponse
	if err := decodeJSONResponse(content, &resp); err != nil {
		return nil, fmt.Errorf("malformed segment response: %w", err)
	}
	if len(resp.Segments) != plan.SegmentCount {
		return nil, fmt.Errorf("expected %d segments, got %d", plan.SegmentCount, len(resp.Segments))
	}
	return resp.Segments, nil
}

// AdjustCommentaryLength rewrites commentary toward targetSeconds.
func (p *LLMPlanner) AdjustCommentaryLength(ctx context.Context, segments []domain.SegmentContent, direction string, targetSeconds float64) ([]domain.SegmentContent, error) {
	current, err := json.Marshal(segmentListResponse{Segments: segments})
	if err != nil {
		return nil, fmt.Errorf("failed to encode segments: %w", err)
	}
	user := fmt.Sprintf(prompts.AdjustUserPrompt, direction, targetSeconds, string(current))

	content, err := p.complete(ctx, prompts.AdjustSystemPrompt, user, 2000)
	if err != nil {
		return nil, err
	}

	var resp segmentListResponse
	if err := decodeJSONResponse(content, &resp); err != nil {
		return nil, fmt.Errorf("malformed adjustment response: %w", err)
	}
	if len(resp.Segments) != len(segments) {
		return nil, fmt.Errorf("adjustment changed segment count: expected %d, got %d", len(segments), len(resp.Segments))
	}
	return resp.Segments, nil
}

type contentModeResponse struct {
	Mode string `json:"mode"`
}

// DetectContentMode classifies the note as direct-message or parable.
func (p *LLMPlanner) DetectContentMode(ctx context.Context, transcript, description string) (domain.ContentMode, error) {
	user := fmt.Sprintf(prompts.ContentModeUserPrompt, description, transcript)

	content, err := p.complete(ctx, prompts.ContentModeSystemPrompt, user, 100)
	if err != nil {
		return "", err
	}

	var resp contentModeResponse
	if err := decodeJSONResponse(content, &resp); err != nil {
		return "", fmt.Errorf("malformed content-mode response: %w", err)
	}
	switch domain.ContentMode(resp.Mode) {
	case domain.ContentModeDirect, domain.ContentModeParable:
		return domain.ContentMode(resp.Mode), nil
	}
	return "", fmt.Errorf("unknown content mode %q", resp.Mode)
}

type parableIntentResponse struct {
	Intent string `json:"intent"`
}

// ExtractParableIntent distills the lesson the story must carry.
func (p *LLMPlanner) ExtractParableIntent(ctx context.Context, transcript string) (string, error) {
	content, err := p.complete(ctx, prompts.ParableIntentSystemPrompt, transcript, 200)
	if err != nil {
		return "", err
	}

	var resp parableIntentResponse
	if err := decodeJSONResponse(content, &resp); err != nil {
		return "", fmt.Errorf("malformed intent response: %w", err)
	}
	if strings.TrimSpace(resp.Intent) == "" {
		return "", fmt.Errorf("empty parable intent")
	}
	return resp.Intent, nil
}

type parableScriptResponse struct {
	Beats []domain.ParableBeat `json:"beats"`
}

// GenerateParableScript writes the four-beat story script.
func (p *LLMPlanner) GenerateParableScript(ctx context.Context, intent string, targetSeconds float64) ([]domain.ParableBeat, error) {
	user := fmt.Sprintf(prompts.ParableScriptUserPrompt, intent, targetSeconds)

	content, err := p.complete(ctx, prompts.ParableScriptSystemPrompt, user, 1500)
	if err != nil {
		return nil, err
	}

	var resp parableScriptResponse
	if err := decodeJSONResponse(content, &resp); err != nil {
		return nil, fmt.Errorf("malformed parable script response: %w", err)
	}
	if len(resp.Beats) != 4 {
		return nil, fmt.Errorf("expected 4 story beats, got %d", len(resp.Beats))
	}
	return resp.Beats, nil
}

// decodeJSONResponse parses a JSON object out of an LLM reply, tolerating
// markdown code fences and prose around the object.
func decodeJSONResponse(content string, out interface{}) error {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in response")
	}
	return json.Unmarshal([]byte(trimmed[start:end+1]), out)
}

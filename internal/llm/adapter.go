package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmylchreest/resumeai/internal/version"
)

// Request is the provider-neutral input to an adapter.
type Request struct {
	Model       string
	Prompt      string
	System      string  // optional system instruction
	Temperature float64 // 0 uses DefaultTemperature
	MaxTokens   int     // 0 uses DefaultMaxTokens
}

func (r Request) withDefaults() Request {
	if r.Temperature == 0 {
		r.Temperature = DefaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	return r
}

// Adapter shapes requests for one provider and extracts the completion text
// from its responses.
type Adapter interface {
	BuildRequest(ctx context.Context, baseURL, apiKey string, req Request) (*http.Request, error)
	ParseResponse(body []byte) (string, error)
}

// Endpoints maps provider names to API base URLs.
type Endpoints map[string]string

// DefaultEndpoints returns the public API base URL of every provider.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ProviderOpenAI:    "https://api.openai.com",
		ProviderDeepSeek:  "https://api.deepseek.com",
		ProviderAnthropic: "https://api.anthropic.com",
		ProviderGemini:    "https://generativelanguage.googleapis.com",
	}
}

// With returns a copy with non-empty overrides applied.
func (e Endpoints) With(overrides map[string]string) Endpoints {
	out := make(Endpoints, len(e))
	for k, v := range e {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = strings.TrimRight(v, "/")
		}
	}
	return out
}

// BaseURL returns the base URL for a provider, falling back to the public default.
func (e Endpoints) BaseURL(provider string) string {
	if u, ok := e[provider]; ok && u != "" {
		return u
	}
	return DefaultEndpoints()[provider]
}

// DefaultAdapters returns the adapter for each supported provider.
func DefaultAdapters() map[string]Adapter {
	return map[string]Adapter{
		ProviderOpenAI:    chatCompletionsAdapter{path: "/v1/chat/completions"},
		ProviderDeepSeek:  chatCompletionsAdapter{path: "/chat/completions"},
		ProviderAnthropic: anthropicAdapter{},
		ProviderGemini:    geminiAdapter{},
	}
}

func newJSONRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// errorEnvelope covers the error body of all four providers, which share
// the {"error": {"message": ...}} shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Status  string `json:"status"`
	} `json:"error"`
}

// extractErrorMessage returns the provider's error message, or a truncated
// copy of the raw body when it is not JSON.
func extractErrorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	if msg == "" {
		return "no error details"
	}
	return msg
}

// ========================================
// OpenAI-compatible chat completions
// ========================================

// chatCompletionsAdapter serves OpenAI and DeepSeek, which differ only in path.
type chatCompletionsAdapter struct {
	path string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (a chatCompletionsAdapter) BuildRequest(ctx context.Context, baseURL, apiKey string, req Request) (*http.Request, error) {
	req = req.withDefaults()
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	httpReq, err := newJSONRequest(ctx, baseURL+a.path, chatCompletionsRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	return httpReq, nil
}

func (a chatCompletionsAdapter) ParseResponse(body []byte) (string, error) {
	var resp chatCompletionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty message content", ErrEmptyResponse)
	}
	return text, nil
}

// ========================================
// Anthropic messages
// ========================================

type anthropicAdapter struct{}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (anthropicAdapter) BuildRequest(ctx context.Context, baseURL, apiKey string, req Request) (*http.Request, error) {
	req = req.withDefaults()
	httpReq, err := newJSONRequest(ctx, baseURL+"/v1/messages", anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: min(req.Temperature, 1.0),
	})
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	return httpReq, nil
}

func (anthropicAdapter) ParseResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text content block", ErrEmptyResponse)
}

// ========================================
// Gemini generateContent
// ========================================

type geminiAdapter struct{}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (geminiAdapter) BuildRequest(ctx context.Context, baseURL, apiKey string, req Request) (*http.Request, error) {
	req = req.withDefaults()
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	payload.GenerationConfig.Temperature = req.Temperature
	payload.GenerationConfig.MaxOutputTokens = req.MaxTokens

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, strings.TrimPrefix(req.Model, "models/"))
	httpReq, err := newJSONRequest(ctx, url, payload)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)
	return httpReq, nil
}

func (geminiAdapter) ParseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate", ErrEmptyResponse)
	}
	return text, nil
}

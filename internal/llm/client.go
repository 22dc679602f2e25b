package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client sends prompts to providers through their adapters. It performs no
// retries; fallback across models belongs to the caller.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	adapters   map[string]Adapter
	logger     *slog.Logger
}

// NewClient creates a client with the default adapters.
func NewClient(logger *slog.Logger, endpoints Endpoints, timeout time.Duration) *Client {
	if endpoints == nil {
		endpoints = DefaultEndpoints()
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
		adapters:   DefaultAdapters(),
		logger:     logger,
	}
}

// RegisterAdapter adds or replaces the adapter for a provider. Call it during
// setup only; the adapter map is not guarded for concurrent writes.
func (c *Client) RegisterAdapter(provider string, a Adapter) {
	c.adapters[provider] = a
}

// HTTPClient returns the shared HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Endpoints returns the configured base URLs.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// CallProvider sends a single prompt with default settings and returns the
// extracted completion text.
func (c *Client) CallProvider(ctx context.Context, provider, apiKey, model, prompt string) (string, error) {
	return c.Call(ctx, provider, apiKey, Request{Model: model, Prompt: prompt})
}

// Call sends req to the provider. Failures are returned as *ProviderError
// except for missing credentials and unknown providers.
func (c *Client) Call(ctx context.Context, provider, apiKey string, req Request) (string, error) {
	if apiKey == "" || provider == "" {
		return "", ErrMissingCredential
	}
	adapter, ok := c.adapters[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	httpReq, err := adapter.BuildRequest(ctx, c.endpoints.BaseURL(provider), apiKey, req)
	if err != nil {
		return "", err
	}

	if c.logger != nil {
		c.logger.Debug("making LLM API request",
			"provider", provider,
			"model", req.Model,
			"prompt_length", len(req.Prompt),
		)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("LLM API request failed", "provider", provider, "model", req.Model, "error", err)
		}
		return "", NewProviderError(provider, req.Model, 0, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", NewProviderError(provider, req.Model, 0, fmt.Sprintf("failed to read response: %v", err))
	}

	if c.logger != nil {
		c.logger.Debug("LLM API response received",
			"provider", provider,
			"model", req.Model,
			"status_code", resp.StatusCode,
			"response_length", len(body),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pErr := NewProviderError(provider, req.Model, resp.StatusCode, extractErrorMessage(body))
		if c.logger != nil {
			c.logger.Warn("LLM API error",
				"provider", provider,
				"model", req.Model,
				"status_code", resp.StatusCode,
				"category", pErr.Category,
			)
		}
		return "", pErr
	}

	// An undecodable 2xx body carries no usable text either.
	text, err := adapter.ParseResponse(body)
	if err != nil {
		return "", newEmptyResponseError(provider, req.Model, resp.StatusCode, err.Error())
	}
	return text, nil
}

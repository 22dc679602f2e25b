package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jmylchreest/resumeai/internal/version"
)

// ModelLister fetches the raw list of usable model ids from a provider.
type ModelLister func(ctx context.Context, httpClient *http.Client, baseURL, apiKey string) ([]string, error)

// modelListers holds the providers that expose a list-models endpoint.
// Everything else resolves through the registry.
var modelListers = map[string]ModelLister{
	ProviderOpenAI: listOpenAIModels,
	ProviderGemini: listGeminiModels,
}

// Discovery resolves the models a key can use, degrading to the registry
// whenever the provider cannot be queried.
type Discovery struct {
	registry   *Registry
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDiscovery creates a model discovery service.
func NewDiscovery(registry *Registry, endpoints Endpoints, httpClient *http.Client, logger *slog.Logger) *Discovery {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoints == nil {
		endpoints = DefaultEndpoints()
	}
	return &Discovery{
		registry:   registry,
		endpoints:  endpoints,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchAvailableModels returns the sorted, de-duplicated models the provider
// reports for apiKey. It never fails: any error yields the registry list.
func (d *Discovery) FetchAvailableModels(ctx context.Context, provider, apiKey string) []string {
	static := d.registry.GetModelsForService(provider)
	if static == nil {
		static = []string{}
	}

	lister, ok := modelListers[provider]
	if !ok || apiKey == "" {
		return static
	}

	models, err := lister(ctx, d.httpClient, d.endpoints.BaseURL(provider), apiKey)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("model discovery failed, using static model list",
				"provider", provider,
				"error", err,
			)
		}
		return static
	}

	models = sortUnique(models)
	if len(models) == 0 {
		if d.logger != nil {
			d.logger.Warn("model discovery returned no usable models, using static model list",
				"provider", provider,
			)
		}
		return static
	}
	return models
}

func sortUnique(models []string) []string {
	out := slices.Clone(models)
	slices.Sort(out)
	return slices.Compact(out)
}

// getJSON performs an authenticated GET and decodes a 2xx body into v.
func getJSON(ctx context.Context, httpClient *http.Client, url string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, extractErrorMessage(body))
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func authHeader(provider, apiKey string) http.Header {
	h := http.Header{}
	switch provider {
	case ProviderGemini:
		h.Set("x-goog-api-key", apiKey)
	case ProviderAnthropic:
		h.Set("x-api-key", apiKey)
		h.Set("anthropic-version", anthropicVersion)
	default:
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return h
}

// probeModelList builds an availability check that succeeds when the
// provider's list-models endpoint accepts the key.
func probeModelList(httpClient *http.Client, provider, baseURL string) AvailabilityCheck {
	url := baseURL + "/v1/models"
	if provider == ProviderGemini {
		url = baseURL + "/v1beta/models?pageSize=1"
	}
	return func(ctx context.Context, apiKey string) bool {
		return getJSON(ctx, httpClient, url, authHeader(provider, apiKey), nil) == nil
	}
}

// ========================================
// OpenAI
// ========================================

var openAIFamilies = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

var openAIExcluded = []string{
	"instruct", "audio", "realtime", "tts", "transcribe", "search",
	"embedding", "image", "moderation",
	// Deprecated snapshots
	"-0301", "-0314", "-0613",
}

func listOpenAIModels(ctx context.Context, httpClient *http.Client, baseURL, apiKey string) ([]string, error) {
	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := getJSON(ctx, httpClient, baseURL+"/v1/models", authHeader(ProviderOpenAI, apiKey), &resp); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		if isUsableOpenAIModel(m.ID) {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

func isUsableOpenAIModel(id string) bool {
	id = strings.ToLower(id)
	if !hasAnyPrefix(id, openAIFamilies) {
		return false
	}
	return !containsAny(id, openAIExcluded)
}

// ========================================
// Gemini
// ========================================

var geminiExcluded = []string{"embedding", "aqa", "vision", "gemini-1.0"}

func listGeminiModels(ctx context.Context, httpClient *http.Client, baseURL, apiKey string) ([]string, error) {
	var resp struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	url := baseURL + "/v1beta/models?pageSize=1000"
	if err := getJSON(ctx, httpClient, url, authHeader(ProviderGemini, apiKey), &resp); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		id := strings.TrimPrefix(m.Name, "models/")
		if !strings.HasPrefix(id, "gemini-") || containsAny(id, geminiExcluded) {
			continue
		}
		if !slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		models = append(models, id)
	}
	return models, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

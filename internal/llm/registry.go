package llm

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

// ProviderInfo contains metadata about an LLM provider for API responses.
type ProviderInfo struct {
	Name           string `json:"name"`                      // Storage key: "openai", "gemini", etc.
	DisplayName    string `json:"display_name"`              // UI label
	Description    string `json:"description"`               // Brief description for UI
	KeyPlaceholder string `json:"key_placeholder,omitempty"` // Placeholder for key input (e.g., "sk-...")
	DocsURL        string `json:"docs_url,omitempty"`        // Link to provider docs
	LiveModelList  bool   `json:"live_model_list"`           // Whether discovery queries the provider
}

// AvailabilityCheck reports whether an API key can currently reach the provider.
type AvailabilityCheck func(ctx context.Context, apiKey string) bool

// ProviderConfig is the static model configuration for one provider.
type ProviderConfig struct {
	Info              ProviderInfo
	PreferredModel    string
	FallbackModels    []string
	CheckAvailability AvailabilityCheck // optional
}

// Models returns the preferred model followed by the fallbacks.
func (p ProviderConfig) Models() []string {
	models := make([]string, 0, 1+len(p.FallbackModels))
	models = append(models, p.PreferredModel)
	return append(models, p.FallbackModels...)
}

// Registry holds the provider configurations. It is built once by
// InitRegistry and never mutated afterwards, so it is safe for concurrent use.
type Registry struct {
	providers map[string]ProviderConfig
}

// InitRegistry creates the registry for all supported providers. Providers
// with a list-models endpoint get an availability probe bound to the given
// endpoints and HTTP client.
func InitRegistry(endpoints Endpoints, httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	r := &Registry{providers: make(map[string]ProviderConfig, 4)}

	r.providers[ProviderOpenAI] = ProviderConfig{
		Info: ProviderInfo{
			Name:           ProviderOpenAI,
			DisplayName:    "OpenAI",
			Description:    "GPT-4o family chat models",
			KeyPlaceholder: "sk-...",
			DocsURL:        "https://platform.openai.com/docs",
			LiveModelList:  true,
		},
		PreferredModel:    "gpt-4o-mini",
		FallbackModels:    []string{"gpt-4o", "gpt-4-turbo", "gpt-3.5-turbo"},
		CheckAvailability: probeModelList(httpClient, ProviderOpenAI, endpoints.BaseURL(ProviderOpenAI)),
	}

	r.providers[ProviderDeepSeek] = ProviderConfig{
		Info: ProviderInfo{
			Name:           ProviderDeepSeek,
			DisplayName:    "DeepSeek",
			Description:    "DeepSeek chat and reasoning models",
			KeyPlaceholder: "sk-...",
			DocsURL:        "https://api-docs.deepseek.com",
		},
		PreferredModel: "deepseek-chat",
		FallbackModels: []string{"deepseek-reasoner"},
	}

	r.providers[ProviderAnthropic] = ProviderConfig{
		Info: ProviderInfo{
			Name:           ProviderAnthropic,
			DisplayName:    "Anthropic",
			Description:    "Claude models",
			KeyPlaceholder: "sk-ant-...",
			DocsURL:        "https://docs.anthropic.com",
		},
		PreferredModel: "claude-3-5-haiku-20241022",
		FallbackModels: []string{"claude-3-5-sonnet-20241022", "claude-3-haiku-20240307"},
	}

	r.providers[ProviderGemini] = ProviderConfig{
		Info: ProviderInfo{
			Name:           ProviderGemini,
			DisplayName:    "Google Gemini",
			Description:    "Gemini Flash and Pro models",
			KeyPlaceholder: "AIza...",
			DocsURL:        "https://ai.google.dev/gemini-api/docs",
			LiveModelList:  true,
		},
		PreferredModel:    "gemini-1.5-flash",
		FallbackModels:    []string{"gemini-1.5-pro", "gemini-2.0-flash"},
		CheckAvailability: probeModelList(httpClient, ProviderGemini, endpoints.BaseURL(ProviderGemini)),
	}

	return r
}

// GetProvider returns a provider configuration by name.
func (r *Registry) GetProvider(name string) (ProviderConfig, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// GetModelsForService returns [preferred, fallbacks...] for a provider, or nil
// when the provider is unknown. The returned slice is a copy.
func (r *Registry) GetModelsForService(provider string) []string {
	p, ok := r.providers[provider]
	if !ok {
		return nil
	}
	return p.Models()
}

// GetPreferredModel returns the preferred model, or "" for an unknown provider.
func (r *Registry) GetPreferredModel(provider string) string {
	return r.providers[provider].PreferredModel
}

// NextModel returns the model after current in the provider's chain, wrapping
// back to the preferred model. A current model outside the chain also yields
// the preferred model.
func (r *Registry) NextModel(provider, current string) string {
	models := r.GetModelsForService(provider)
	if len(models) == 0 {
		return ""
	}
	idx := slices.Index(models, current)
	if idx < 0 {
		return models[0]
	}
	return models[(idx+1)%len(models)]
}

// ModelChain returns the attempt order starting at current: current first,
// then every other chain entry in registry order. An empty current starts at
// the preferred model.
func (r *Registry) ModelChain(provider, current string) []string {
	models := r.GetModelsForService(provider)
	if current == "" {
		return models
	}
	chain := []string{current}
	for _, m := range models {
		if !strings.EqualFold(m, current) {
			chain = append(chain, m)
		}
	}
	return chain
}

// CheckAvailability runs the provider's probe. Providers without one report false.
func (r *Registry) CheckAvailability(ctx context.Context, provider, apiKey string) bool {
	p, ok := r.providers[provider]
	if !ok || p.CheckAvailability == nil || apiKey == "" {
		return false
	}
	return p.CheckAvailability(ctx, apiKey)
}

// Providers returns metadata for every registered provider in ValidProviders order.
func (r *Registry) Providers() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, name := range ValidProviders() {
		if p, ok := r.providers[name]; ok {
			infos = append(infos, p.Info)
		}
	}
	return infos
}

// Package llm provides the provider registry, model discovery and request
// adapters for the LLM providers a resume session can use.
package llm

// Provider name constants for use throughout the codebase.
// Use these constants instead of string literals to prevent typos
// and enable compile-time checking.
const (
	// ProviderOpenAI is the OpenAI provider name.
	ProviderOpenAI = "openai"

	// ProviderDeepSeek is the DeepSeek provider name.
	ProviderDeepSeek = "deepseek"

	// ProviderAnthropic is the Anthropic provider name.
	ProviderAnthropic = "anthropic"

	// ProviderGemini is the Google Gemini provider name.
	ProviderGemini = "gemini"
)

// Default request settings applied when a caller leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048

	// anthropicVersion is the API version header Anthropic requires on every call.
	anthropicVersion = "2023-06-01"

	// maxResponseBytes bounds how much of a provider response body is read.
	maxResponseBytes = 4 << 20
)

// ValidProviders returns a slice of all valid provider names.
func ValidProviders() []string {
	return []string{
		ProviderOpenAI,
		ProviderDeepSeek,
		ProviderAnthropic,
		ProviderGemini,
	}
}

// IsValidProvider returns true if the provider name is valid.
func IsValidProvider(provider string) bool {
	switch provider {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini:
		return true
	default:
		return false
	}
}

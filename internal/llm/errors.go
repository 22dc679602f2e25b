package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error categories for LLM operations.
var (
	// ErrMissingCredential indicates no API key or provider was supplied.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnknownProvider indicates the provider id is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse indicates the provider answered but carried no usable text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrModelUnavailable indicates a specific model is unavailable.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidAPIKey indicates the API key is invalid or expired.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrProviderError indicates a general provider error.
	ErrProviderError = errors.New("provider error")
)

// ProviderError represents a failed provider call with user-friendly messaging.
type ProviderError struct {
	// Classified cause (one of the sentinels above)
	Err error

	// HTTP status code; 0 when no response was received
	StatusCode int

	Provider string
	Model    string

	// Message reported by the provider, or the transport error text
	Message string

	// User-friendly message to display
	UserMessage string

	// Error category for classification (rate_limit, invalid_key, etc.)
	Category string

	// Whether this is a retryable error (with same provider/model)
	Retryable bool

	// Whether this error should trigger fallback to the next model
	ShouldFallback bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a classified ProviderError for a provider call.
func NewProviderError(provider, model string, statusCode int, message string) *ProviderError {
	return ClassifyError(&ProviderError{
		StatusCode: statusCode,
		Provider:   provider,
		Model:      model,
		Message:    message,
	})
}

// newEmptyResponseError builds the error for a 2xx response without text.
func newEmptyResponseError(provider, model string, statusCode int, detail string) *ProviderError {
	msg := "response contained no text"
	if detail != "" {
		msg = msg + ": " + detail
	}
	return &ProviderError{
		Err:            ErrEmptyResponse,
		StatusCode:     statusCode,
		Provider:       provider,
		Model:          model,
		Message:        msg,
		UserMessage:    "The model returned an empty response.",
		Category:       "empty_response",
		Retryable:      true,
		ShouldFallback: true,
	}
}

// ClassifyError fills in Err, Category, UserMessage and the retry flags from
// the status code first, then from message patterns.
func ClassifyError(e *ProviderError) *ProviderError {
	if e == nil {
		return nil
	}
	msg := strings.ToLower(e.Message)

	switch e.StatusCode {
	case 0:
		e.Err = ErrProviderError
		e.Category = "network"
		e.UserMessage = "Could not reach the AI provider. Check your connection and try again."
		e.Retryable = true
		e.ShouldFallback = true
		if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
			e.Category = "timeout"
			e.UserMessage = "The AI provider took too long to respond. Please try again."
		}

	case http.StatusUnauthorized, http.StatusForbidden: // 401, 403
		e.Err = ErrInvalidAPIKey
		e.Category = "invalid_key"
		e.UserMessage = "Invalid API key. Please check your AI settings."
		e.Retryable = false
		e.ShouldFallback = false // Don't try other models with same bad key

	case http.StatusTooManyRequests: // 429
		e.Err = ErrProviderError
		e.Category = "rate_limit"
		e.UserMessage = "Rate limit exceeded. Please wait before retrying."
		e.Retryable = true
		e.ShouldFallback = true

	case http.StatusPaymentRequired: // 402
		e.Err = ErrProviderError
		e.Category = "quota_exceeded"
		e.UserMessage = "Payment required. Please check your API key's billing status."
		e.ShouldFallback = false

	case http.StatusNotFound: // 404
		e.Err = ErrModelUnavailable
		e.Category = "model_unsupported"
		e.UserMessage = fmt.Sprintf("The model %q is not available for this key.", e.Model)
		e.ShouldFallback = true

	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusInternalServerError:
		e.Err = ErrModelUnavailable
		e.Category = "provider_error"
		e.UserMessage = "The model is temporarily unavailable. Please try again later."
		e.Retryable = true
		e.ShouldFallback = true

	default:
		classifyByMessage(e, msg)
	}

	return e
}

// classifyByMessage handles statuses that need the provider's message to decide.
func classifyByMessage(e *ProviderError, msg string) {
	switch {
	case strings.Contains(msg, "invalid api key") || strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "authentication") || strings.Contains(msg, "incorrect api key"):
		e.Err = ErrInvalidAPIKey
		e.Category = "invalid_key"
		e.UserMessage = "Invalid API key. Please check your AI settings."
		e.ShouldFallback = false

	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted"):
		e.Err = ErrProviderError
		e.Category = "rate_limit"
		e.UserMessage = "Rate limit exceeded. Please wait before retrying."
		e.Retryable = true
		e.ShouldFallback = true

	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "capacity"):
		e.Err = ErrModelUnavailable
		e.Category = "provider_error"
		e.UserMessage = "Model is overloaded. Please try again later."
		e.Retryable = true
		e.ShouldFallback = true

	case strings.Contains(msg, "model") && (strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") || strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "invalid model")):
		e.Err = ErrModelUnavailable
		e.Category = "model_unsupported"
		e.UserMessage = fmt.Sprintf("The model %q is not available for this key.", e.Model)
		e.ShouldFallback = true

	case strings.Contains(msg, "context") && strings.Contains(msg, "length"):
		e.Err = ErrProviderError
		e.Category = "content_too_long"
		e.UserMessage = "The request is too long for the model. Try shortening the text."
		e.ShouldFallback = false // Content issue, not model issue

	default:
		e.Err = ErrProviderError
		e.Category = "unknown"
		e.UserMessage = fmt.Sprintf("AI provider error: %s", e.Message)
		e.ShouldFallback = true
	}
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Retryable
	}
	return false
}

// ShouldFallback returns true if the error should advance to the next model.
func ShouldFallback(err error) bool {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.ShouldFallback
	}
	return false
}

// GetUserMessage returns a user-friendly message for the error.
func GetUserMessage(err error) string {
	var pErr *ProviderError
	if errors.As(err, &pErr) && pErr.UserMessage != "" {
		return pErr.UserMessage
	}
	if errors.Is(err, ErrMissingCredential) {
		return "Configure an AI provider and API key before using AI features."
	}
	return "An unexpected error occurred. Please try again."
}

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// ========================================
// ProviderError Tests
// ========================================

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name:     "with status",
			err:      &ProviderError{Provider: "openai", StatusCode: 429, Message: "slow down"},
			expected: "openai returned status 429: slow down",
		},
		{
			name:     "no response",
			err:      &ProviderError{Provider: "gemini", Message: "connection refused"},
			expected: "gemini request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	pErr := NewProviderError("openai", "gpt-4o", http.StatusUnauthorized, "bad key")

	if !errors.Is(pErr, ErrInvalidAPIKey) {
		t.Error("401 should unwrap to ErrInvalidAPIKey")
	}

	wrapped := fmt.Errorf("generate: %w", pErr)
	var target *ProviderError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find ProviderError through wrapping")
	}
	if target.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", target.StatusCode)
	}
}

// ========================================
// ClassifyError Tests
// ========================================

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		message       string
		wantErr       error
		wantCategory  string
		wantFallback  bool
		wantRetryable bool
	}{
		{"unauthorized", 401, "invalid x-api-key", ErrInvalidAPIKey, "invalid_key", false, false},
		{"forbidden", 403, "permission denied", ErrInvalidAPIKey, "invalid_key", false, false},
		{"rate limit", 429, "too many requests", ErrProviderError, "rate_limit", true, true},
		{"payment", 402, "insufficient balance", ErrProviderError, "quota_exceeded", false, false},
		{"not found", 404, "model not found", ErrModelUnavailable, "model_unsupported", true, false},
		{"unavailable", 503, "overloaded", ErrModelUnavailable, "provider_error", true, true},
		{"server error", 500, "internal", ErrModelUnavailable, "provider_error", true, true},
		{"network", 0, "dial tcp: connection refused", ErrProviderError, "network", true, true},
		{"timeout", 0, "context deadline exceeded", ErrProviderError, "timeout", true, true},
		{"bad request model", 400, "The model `gpt-9` does not exist", ErrModelUnavailable, "model_unsupported", true, false},
		{"bad request key", 400, "API key not valid. Please pass a valid API key.", ErrInvalidAPIKey, "invalid_key", false, false},
		{"context length", 400, "maximum context length exceeded", ErrProviderError, "content_too_long", false, false},
		{"overloaded message", 529, "Overloaded", ErrModelUnavailable, "provider_error", true, true},
		{"unknown", 418, "teapot", ErrProviderError, "unknown", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pErr := NewProviderError("openai", "gpt-4o", tt.status, tt.message)

			if !errors.Is(pErr, tt.wantErr) {
				t.Errorf("Err = %v, want %v", pErr.Err, tt.wantErr)
			}
			if pErr.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", pErr.Category, tt.wantCategory)
			}
			if pErr.ShouldFallback != tt.wantFallback {
				t.Errorf("ShouldFallback = %v, want %v", pErr.ShouldFallback, tt.wantFallback)
			}
			if pErr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", pErr.Retryable, tt.wantRetryable)
			}
			if pErr.UserMessage == "" {
				t.Error("UserMessage should be set")
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should return nil")
	}
}

// ========================================
// Helper Function Tests
// ========================================

func TestHelpers(t *testing.T) {
	rateLimited := NewProviderError("openai", "gpt-4o", 429, "slow")
	badKey := NewProviderError("openai", "gpt-4o", 401, "bad")
	plain := errors.New("plain")

	if !IsRetryable(rateLimited) || IsRetryable(badKey) || IsRetryable(plain) {
		t.Error("IsRetryable mismatch")
	}
	if !ShouldFallback(rateLimited) || ShouldFallback(badKey) || ShouldFallback(plain) {
		t.Error("ShouldFallback mismatch")
	}
	if GetUserMessage(badKey) != badKey.UserMessage {
		t.Error("GetUserMessage should return the ProviderError message")
	}
	if GetUserMessage(ErrMissingCredential) == GetUserMessage(plain) {
		t.Error("missing credential should have a dedicated message")
	}
}

func TestEmptyResponseError(t *testing.T) {
	err := newEmptyResponseError("anthropic", "claude", 200, "no text")

	if !errors.Is(err, ErrEmptyResponse) {
		t.Error("should unwrap to ErrEmptyResponse")
	}
	if !err.ShouldFallback {
		t.Error("empty response should fall back")
	}
}

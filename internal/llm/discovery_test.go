package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
)

func newTestDiscovery(provider, baseURL string) *Discovery {
	endpoints := DefaultEndpoints().With(map[string]string{provider: baseURL})
	return NewDiscovery(InitRegistry(endpoints, nil), endpoints, nil, nil)
}

// ========================================
// OpenAI Discovery Tests
// ========================================

func TestFetchAvailableModels_OpenAIFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" || r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":"gpt-4o"},
			{"id":"gpt-4o-mini"},
			{"id":"gpt-4o"},
			{"id":"gpt-3.5-turbo-instruct"},
			{"id":"gpt-4o-audio-preview"},
			{"id":"gpt-4o-realtime-preview"},
			{"id":"gpt-4-0613"},
			{"id":"text-embedding-3-small"},
			{"id":"dall-e-3"},
			{"id":"whisper-1"},
			{"id":"o1-mini"},
			{"id":"chatgpt-4o-latest"}
		]}`))
	}))
	defer server.Close()

	d := newTestDiscovery(ProviderOpenAI, server.URL)
	got := d.FetchAvailableModels(context.Background(), ProviderOpenAI, "k")

	want := []string{"chatgpt-4o-latest", "gpt-4o", "gpt-4o-mini", "o1-mini"}
	if !slices.Equal(got, want) {
		t.Errorf("FetchAvailableModels() = %v, want %v", got, want)
	}
}

// ========================================
// Gemini Discovery Tests
// ========================================

func TestFetchAvailableModels_GeminiFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"models":[
			{"name":"models/gemini-1.5-pro","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/gemini-1.5-flash","supportedGenerationMethods":["generateContent"]},
			{"name":"models/gemini-1.0-pro","supportedGenerationMethods":["generateContent"]},
			{"name":"models/gemini-pro-vision","supportedGenerationMethods":["generateContent"]},
			{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]},
			{"name":"models/gemini-embedding-exp","supportedGenerationMethods":["embedContent"]},
			{"name":"models/aqa","supportedGenerationMethods":["generateAnswer"]},
			{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["countTokens"]}
		]}`))
	}))
	defer server.Close()

	d := newTestDiscovery(ProviderGemini, server.URL)
	got := d.FetchAvailableModels(context.Background(), ProviderGemini, "k")

	want := []string{"gemini-1.5-flash", "gemini-1.5-pro"}
	if !slices.Equal(got, want) {
		t.Errorf("FetchAvailableModels() = %v, want %v", got, want)
	}
}

// ========================================
// Fallback Tests
// ========================================

func TestFetchAvailableModels_FallsBackToRegistry(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"data":`)) }},
		{"nothing usable", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"id":"whisper-1"}]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			d := newTestDiscovery(ProviderOpenAI, server.URL)
			got := d.FetchAvailableModels(context.Background(), ProviderOpenAI, "k")

			if want := d.registry.GetModelsForService(ProviderOpenAI); !slices.Equal(got, want) {
				t.Errorf("FetchAvailableModels() = %v, want registry list %v", got, want)
			}
		})
	}
}

func TestFetchAvailableModels_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	d := newTestDiscovery(ProviderGemini, url)
	got := d.FetchAvailableModels(context.Background(), ProviderGemini, "k")

	if want := d.registry.GetModelsForService(ProviderGemini); !slices.Equal(got, want) {
		t.Errorf("FetchAvailableModels() = %v, want registry list %v", got, want)
	}
}

func TestFetchAvailableModels_StaticProviders(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	for _, provider := range []string{ProviderAnthropic, ProviderDeepSeek} {
		d := newTestDiscovery(provider, server.URL)
		got := d.FetchAvailableModels(context.Background(), provider, "k")
		if want := d.registry.GetModelsForService(provider); !slices.Equal(got, want) {
			t.Errorf("%s: FetchAvailableModels() = %v, want %v", provider, got, want)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("static providers made %d network calls, want 0", calls.Load())
	}
}

func TestFetchAvailableModels_NoKeyOrUnknownProvider(t *testing.T) {
	d := NewDiscovery(InitRegistry(DefaultEndpoints(), nil), nil, nil, nil)

	if got := d.FetchAvailableModels(context.Background(), ProviderOpenAI, ""); len(got) == 0 {
		t.Error("no key should still return the registry list")
	}
	got := d.FetchAvailableModels(context.Background(), "mistral", "k")
	if got == nil || len(got) != 0 {
		t.Errorf("unknown provider = %v, want empty non-nil list", got)
	}
}

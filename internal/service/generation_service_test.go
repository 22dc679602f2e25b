package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

const validTemplate = "React.createElement('div', { className: 'resume' }, React.createElement('h1', null, resumeData.personalInfo.fullName))"

func newTestGenerationService(c Completer, attempts int) *GenerationService {
	return NewGenerationService(c, testRegistry(), GenerationConfig{
		MaxModelAttempts: attempts,
		MaxSuggestions:   3,
	}, testLogger())
}

// modelRecorder captures UpdateModel calls.
type modelRecorder struct {
	models []string
}

func (r *modelRecorder) update(ctx context.Context, model string) error {
	r.models = append(r.models, model)
	return nil
}

// ========================================
// Credential Precondition Tests
// ========================================

func TestGenerateAIContent_MissingCredential(t *testing.T) {
	tests := []struct {
		name  string
		aiCtx AIContext
	}{
		{"empty key", AIContext{Provider: llm.ProviderOpenAI}},
		{"empty provider", AIContext{APIKey: "sk-test"}},
		{"both empty", AIContext{}},
		{"unknown provider", AIContext{Provider: "mistral", APIKey: "sk-test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := newScriptedCompleter(nil)
			svc := newTestGenerationService(completer, 3)

			_, err := svc.GenerateAIContent(context.Background(), tt.aiCtx, models.GenerationRequest{Prompt: "x", Field: "summary"})
			if !errors.Is(err, llm.ErrMissingCredential) {
				t.Errorf("err = %v, want ErrMissingCredential", err)
			}
			if completer.callCount() != 0 {
				t.Errorf("made %d network calls, want 0", completer.callCount())
			}
		})
	}
}

func TestGenerateTemplate_MissingCredential(t *testing.T) {
	completer := newScriptedCompleter(nil)
	svc := newTestGenerationService(completer, 3)

	res := svc.GenerateTemplate(context.Background(), AIContext{Provider: llm.ProviderGemini}, models.TemplatePreferences{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error == nil || res.Error.Code != CodeMissingCredential {
		t.Errorf("Error = %+v, want code %s", res.Error, CodeMissingCredential)
	}
	if completer.callCount() != 0 {
		t.Errorf("made %d calls, want 0", completer.callCount())
	}
}

// ========================================
// Content Generation Tests
// ========================================

func TestGenerateAIContent_ThreeSuggestions(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"gpt-4o-mini": {text: "Led a team of five engineers\n  Shipped the billing rewrite  \nCut latency by 40%\n"},
	})
	svc := newTestGenerationService(completer, 3)

	got, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "did stuff", Field: "experience description", Action: models.ActionSuggest})
	if err != nil {
		t.Fatalf("GenerateAIContent() error = %v", err)
	}

	want := []string{"Led a team of five engineers", "Shipped the billing rewrite", "Cut latency by 40%"}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if completer.calls[0] != "gpt-4o-mini" {
		t.Errorf("first model = %q, want preferred gpt-4o-mini", completer.calls[0])
	}
}

func TestGenerateAIContent_UsesCurrentModel(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"gpt-4o": {text: "one"},
	})
	svc := newTestGenerationService(completer, 1)

	_, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test", CurrentModel: "gpt-4o"},
		models.GenerationRequest{Prompt: "x", Field: "summary"})
	if err != nil {
		t.Fatalf("GenerateAIContent() error = %v", err)
	}
	if len(completer.calls) != 1 || completer.calls[0] != "gpt-4o" {
		t.Errorf("calls = %v, want [gpt-4o]", completer.calls)
	}
}

func TestGenerateAIContent_InvalidAction(t *testing.T) {
	svc := newTestGenerationService(newScriptedCompleter(nil), 3)
	_, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "x", Action: "translate"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

// ========================================
// Fallback Policy Tests
// ========================================

func TestGenerateAIContent_StopsOn401(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"gpt-4o-mini": {status: 401},
		"gpt-4o":      {text: "should not be reached"},
	})
	recorder := &modelRecorder{}
	svc := newTestGenerationService(completer, 3)

	_, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-bad", UpdateModel: recorder.update},
		models.GenerationRequest{Prompt: "x", Field: "summary"})

	var pErr *llm.ProviderError
	if !errors.As(err, &pErr) || pErr.StatusCode != 401 {
		t.Fatalf("err = %v, want 401 ProviderError", err)
	}
	if !errors.Is(err, llm.ErrInvalidAPIKey) {
		t.Errorf("err should unwrap to ErrInvalidAPIKey")
	}
	if completer.callCount() != 1 {
		t.Errorf("calls = %v, want exactly one", completer.calls)
	}
	if len(recorder.models) != 0 {
		t.Errorf("UpdateModel called with %v on failure", recorder.models)
	}
}

func TestGenerateAIContent_AdvancesOn503(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"gpt-4o-mini": {status: 503},
		"gpt-4o":      {text: "1. First\n2. Second"},
	})
	recorder := &modelRecorder{}
	svc := newTestGenerationService(completer, 3)

	got, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test", UpdateModel: recorder.update},
		models.GenerationRequest{Prompt: "x", Field: "summary"})
	if err != nil {
		t.Fatalf("GenerateAIContent() error = %v", err)
	}
	if len(got) != 2 || got[0] != "First" {
		t.Errorf("suggestions = %q", got)
	}
	if strings.Join(completer.calls, ",") != "gpt-4o-mini,gpt-4o" {
		t.Errorf("calls = %v", completer.calls)
	}
	if len(recorder.models) != 1 || recorder.models[0] != "gpt-4o" {
		t.Errorf("UpdateModel calls = %v, want [gpt-4o]", recorder.models)
	}
}

func TestGenerateAIContent_AttemptCap(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"gpt-4o-mini":   {status: 429},
		"gpt-4o":        {status: 503},
		"gpt-4-turbo":   {status: 500},
		"gpt-3.5-turbo": {text: "too late"},
	})
	svc := newTestGenerationService(completer, 2)

	_, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "x", Field: "summary"})

	var pErr *llm.ProviderError
	if !errors.As(err, &pErr) || pErr.StatusCode != 503 {
		t.Errorf("err = %v, want the last (503) provider error", err)
	}
	if completer.callCount() != 2 {
		t.Errorf("calls = %v, want 2", completer.calls)
	}
}

func TestGenerateAIContent_EmptyResponseAdvances(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"deepseek-chat":     {text: "\n  \n- \n"},
		"deepseek-reasoner": {text: "Better summary"},
	})
	svc := newTestGenerationService(completer, 3)

	got, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderDeepSeek, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "x", Field: "summary"})
	if err != nil {
		t.Fatalf("GenerateAIContent() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Better summary" {
		t.Errorf("suggestions = %q", got)
	}
}

func TestGenerateAIContent_AllEmpty(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"deepseek-chat":     {text: ""},
		"deepseek-reasoner": {text: "   "},
	})
	svc := newTestGenerationService(completer, 3)

	_, err := svc.GenerateAIContent(context.Background(),
		AIContext{Provider: llm.ProviderDeepSeek, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "x", Field: "summary"})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
	if got := ToGenerationError(err); got.Code != CodeEmptyResponse {
		t.Errorf("code = %s, want %s", got.Code, CodeEmptyResponse)
	}
}

func TestGenerateAIContent_CancelledContext(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{"gpt-4o-mini": {text: "x"}})
	svc := newTestGenerationService(completer, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateAIContent(ctx, AIContext{Provider: llm.ProviderOpenAI, APIKey: "sk-test"},
		models.GenerationRequest{Prompt: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if completer.callCount() != 0 {
		t.Errorf("calls = %v, want none", completer.calls)
	}
}

// ========================================
// Template Generation Tests
// ========================================

func TestGenerateTemplate_Success(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"claude-3-5-haiku-20241022": {text: "```jsx\n" + validTemplate + ";\n```"},
	})
	svc := newTestGenerationService(completer, 3)

	res := svc.GenerateTemplate(context.Background(),
		AIContext{Provider: llm.ProviderAnthropic, APIKey: "sk-ant-test"},
		models.TemplatePreferences{Style: "modern", ColorScheme: "blue"})
	if !res.Success {
		t.Fatalf("GenerateTemplate() failed: %+v", res.Error)
	}
	if res.TemplateCode != validTemplate {
		t.Errorf("TemplateCode = %q, want normalized source", res.TemplateCode)
	}
	if res.Attempts != 1 || res.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Attempts = %d Model = %q", res.Attempts, res.Model)
	}
	if !strings.Contains(completer.lastReq.Prompt, "modern") {
		t.Error("prompt should carry the preferences")
	}
}

func TestGenerateTemplate_ValidatorRejectionAdvances(t *testing.T) {
	completer := newScriptedCompleter(map[string]scriptedReply{
		"claude-3-5-haiku-20241022":  {text: "import React from 'react';\n" + validTemplate},
		"claude-3-5-sonnet-20241022": {text: validTemplate},
	})
	recorder := &modelRecorder{}
	svc := newTestGenerationService(completer, 3)

	res := svc.GenerateTemplate(context.Background(),
		AIContext{Provider: llm.ProviderAnthropic, APIKey: "sk-ant-test", UpdateModel: recorder.update},
		models.TemplatePreferences{})
	if !res.Success {
		t.Fatalf("GenerateTemplate() failed: %+v", res.Error)
	}
	if res.Attempts != 2 || res.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("Attempts = %d Model = %q", res.Attempts, res.Model)
	}
	if len(recorder.models) != 1 || recorder.models[0] != "claude-3-5-sonnet-20241022" {
		t.Errorf("UpdateModel calls = %v", recorder.models)
	}
}

func TestGenerateTemplate_ValidatorErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantErr  error
	}{
		{"document entry point", "document.createElement('div')", CodeInvalidTemplateStructure, templatecode.ErrInvalidTemplateStructure},
		{"unbalanced", "React.createElement('div', null))", CodeValidationSyntax, templatecode.ErrValidationSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := newScriptedCompleter(map[string]scriptedReply{
				"gemini-1.5-flash": {text: tt.text},
				"gemini-1.5-pro":   {text: tt.text},
				"gemini-2.0-flash": {text: tt.text},
			})
			svc := newTestGenerationService(completer, 3)

			res := svc.GenerateTemplate(context.Background(),
				AIContext{Provider: llm.ProviderGemini, APIKey: "AIza-test"}, models.TemplatePreferences{})
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", res.Error.Code, tt.wantCode)
			}
			if res.Attempts != 3 {
				t.Errorf("Attempts = %d, want 3", res.Attempts)
			}
			if res.TemplateCode != "" {
				t.Error("rejected code must not be returned")
			}
		})
	}
}

func TestGenerateTemplate_401LeavesCredentialAlone(t *testing.T) {
	env := newTestEnv(t, false)
	sessionID := env.newSession(t)
	creds := NewCredentialService(env.kv, testEncryptor(t), testRegistry(), testLogger())

	if _, err := creds.Save(context.Background(), sessionID, SaveInput{Provider: "openai", APIKey: "sk-revoked-key"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	aiCtx, err := creds.Context(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}

	completer := newScriptedCompleter(map[string]scriptedReply{"gpt-4o-mini": {status: 401}})
	svc := newTestGenerationService(completer, 3)

	res := svc.GenerateTemplate(context.Background(), aiCtx, models.TemplatePreferences{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Code != CodeProviderError || res.Error.ProviderStatus != 401 {
		t.Errorf("Error = %+v, want provider_error with status 401", res.Error)
	}

	cred, err := creds.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.APIKey != "sk-revoked-key" || cred.Provider != "openai" || cred.CurrentModel != "" {
		t.Errorf("credential changed after failure: %+v", cred)
	}
}

// ========================================
// Error Mapping Tests
// ========================================

func TestToGenerationError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     string
		wantStatus   int
		wantCategory string
	}{
		{"missing credential", llm.ErrMissingCredential, CodeMissingCredential, 0, ""},
		{"provider 429", llm.NewProviderError("openai", "m", 429, "slow down"), CodeProviderError, 429, "rate_limit"},
		{"transport", llm.NewProviderError("openai", "m", 0, "dial tcp: timeout"), CodeProviderError, 0, "timeout"},
		{"structure", templatecode.ErrInvalidTemplateStructure, CodeInvalidTemplateStructure, 0, ""},
		{"syntax", templatecode.ErrValidationSyntax, CodeValidationSyntax, 0, ""},
		{"deadline", context.DeadlineExceeded, CodeProviderError, 0, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToGenerationError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.ProviderStatus != tt.wantStatus {
				t.Errorf("ProviderStatus = %d, want %d", got.ProviderStatus, tt.wantStatus)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}

	if ToGenerationError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/crypto"
	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/service"
)

// AIHandler serves provider, credential and content generation endpoints.
type AIHandler struct {
	credentials *service.CredentialService
	generation  *service.GenerationService
	registry    *llm.Registry
	discovery   *llm.Discovery
	logger      *slog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(svc *service.Services, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		credentials: svc.Credential,
		generation:  svc.Generation,
		registry:    svc.Registry,
		discovery:   svc.Discovery,
		logger:      logger,
	}
}

// ========================================
// Providers
// ========================================

// ListProvidersOutput represents the provider catalogue.
type ListProvidersOutput struct {
	Body struct {
		Providers []llm.ProviderInfo `json:"providers"`
	}
}

// ListProviders returns the supported providers.
func (h *AIHandler) ListProviders(ctx context.Context, input *struct{}) (*ListProvidersOutput, error) {
	out := &ListProvidersOutput{}
	out.Body.Providers = h.registry.Providers()
	return out, nil
}

// ListModelsInput selects a provider.
type ListModelsInput struct {
	Provider string `path:"provider" doc:"Provider name" example:"openai"`
}

// ListModelsOutput lists the models usable with a provider.
type ListModelsOutput struct {
	Body struct {
		Provider string   `json:"provider"`
		Models   []string `json:"models"`
		Live     bool     `json:"live" doc:"True when the list was requested with the session's key"`
	}
}

// ListModels returns the models for a provider. When the session's
// credential is for the same provider its key is used for live discovery.
func (h *AIHandler) ListModels(ctx context.Context, input *ListModelsInput) (*ListModelsOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	provider := strings.ToLower(input.Provider)
	if !llm.IsValidProvider(provider) {
		return nil, huma.Error400BadRequest("unknown provider: " + input.Provider)
	}

	cred, err := h.credentials.Get(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "list models", err)
	}
	apiKey := ""
	if cred.IsConfigured() && cred.Provider == provider {
		apiKey = cred.APIKey
	}

	out := &ListModelsOutput{}
	out.Body.Provider = provider
	out.Body.Models = h.discovery.FetchAvailableModels(ctx, provider, apiKey)
	out.Body.Live = apiKey != ""
	return out, nil
}

// ========================================
// Credentials
// ========================================

// CredentialView is the client-facing credential. The key is never echoed.
type CredentialView struct {
	Configured    bool   `json:"configured"`
	Provider      string `json:"provider,omitempty"`
	MaskedKey     string `json:"masked_key,omitempty"`
	CurrentModel  string `json:"current_model,omitempty"`
	ResolvedModel string `json:"resolved_model,omitempty" doc:"Model the next request starts with"`
}

// CredentialOutput wraps a credential view.
type CredentialOutput struct {
	Body CredentialView
}

func (h *AIHandler) credentialView(cred *models.Credential) *CredentialOutput {
	out := &CredentialOutput{}
	if !cred.IsConfigured() {
		return out
	}
	out.Body = CredentialView{
		Configured:    true,
		Provider:      cred.Provider,
		MaskedKey:     crypto.MaskKey(cred.APIKey),
		CurrentModel:  cred.CurrentModel,
		ResolvedModel: h.credentials.ResolvedModel(cred),
	}
	return out
}

// GetCredential returns the session's credential.
func (h *AIHandler) GetCredential(ctx context.Context, input *struct{}) (*CredentialOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	cred, err := h.credentials.Get(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "get credential", err)
	}
	return h.credentialView(cred), nil
}

// PutCredentialInput replaces the credential.
type PutCredentialInput struct {
	Body struct {
		Provider string `json:"provider" enum:"openai,deepseek,anthropic,gemini"`
		APIKey   string `json:"api_key" minLength:"1"`
		Model    string `json:"model,omitempty" doc:"Starting model; defaults to the provider's preferred model"`
	}
}

// PutCredential stores an encrypted provider key for the session.
func (h *AIHandler) PutCredential(ctx context.Context, input *PutCredentialInput) (*CredentialOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	cred, err := h.credentials.Save(ctx, sessionID, service.SaveInput{
		Provider: input.Body.Provider,
		APIKey:   input.Body.APIKey,
		Model:    input.Body.Model,
	})
	if err != nil {
		return nil, toHumaError(h.logger, "save credential", err)
	}
	return h.credentialView(cred), nil
}

// DeleteCredential removes the session's credential.
func (h *AIHandler) DeleteCredential(ctx context.Context, input *struct{}) (*struct{}, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.credentials.Delete(ctx, sessionID); err != nil {
		return nil, toHumaError(h.logger, "delete credential", err)
	}
	return nil, nil
}

// UpdateModelInput switches the current model.
type UpdateModelInput struct {
	Body struct {
		Model string `json:"model,omitempty" doc:"Empty advances to the next model in the fallback chain"`
	}
}

// UpdateModelOutput reports the model now in use.
type UpdateModelOutput struct {
	Body struct {
		CurrentModel string `json:"current_model"`
	}
}

// UpdateModel switches the session's current model.
func (h *AIHandler) UpdateModel(ctx context.Context, input *UpdateModelInput) (*UpdateModelOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	model, err := h.credentials.UpdateCurrentModel(ctx, sessionID, input.Body.Model)
	if err != nil {
		return nil, toHumaError(h.logger, "update model", err)
	}
	out := &UpdateModelOutput{}
	out.Body.CurrentModel = model
	return out, nil
}

// VerifyCredentialOutput reports whether the key reached the provider.
type VerifyCredentialOutput struct {
	Body struct {
		Valid bool `json:"valid"`
	}
}

// VerifyCredential probes the provider with the stored key.
func (h *AIHandler) VerifyCredential(ctx context.Context, input *struct{}) (*VerifyCredentialOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := h.credentials.Verify(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "verify credential", err)
	}
	out := &VerifyCredentialOutput{}
	out.Body.Valid = ok
	return out, nil
}

// ========================================
// Content generation
// ========================================

// SuggestionsInput requests improved versions of a resume field.
type SuggestionsInput struct {
	Body struct {
		Prompt  string `json:"prompt" minLength:"1" doc:"Current field text"`
		Field   string `json:"field" minLength:"1" doc:"Resume field being edited" example:"summary"`
		Context string `json:"context,omitempty" doc:"Surrounding resume context"`
		Action  string `json:"action,omitempty" enum:"suggest,optimize,grammar" default:"suggest"`
	}
}

// SuggestionsOutput carries the generated suggestions.
type SuggestionsOutput struct {
	Body struct {
		Suggestions []string `json:"suggestions"`
	}
}

// Suggestions generates content with automatic model fallback.
func (h *AIHandler) Suggestions(ctx context.Context, input *SuggestionsInput) (*SuggestionsOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	aiCtx, err := h.credentials.Context(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "load credential", err)
	}

	suggestions, err := h.generation.GenerateAIContent(ctx, aiCtx, models.GenerationRequest{
		Prompt:  input.Body.Prompt,
		Field:   input.Body.Field,
		Context: input.Body.Context,
		Action:  models.Action(input.Body.Action),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, NewGenerationErrorResponse(service.ToGenerationError(err))
	}

	out := &SuggestionsOutput{}
	out.Body.Suggestions = suggestions
	return out, nil
}

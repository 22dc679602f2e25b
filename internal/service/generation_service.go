package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

// Error codes carried by failed generation results.
const (
	CodeMissingCredential        = "missing_credential"
	CodeProviderError            = "provider_error"
	CodeEmptyResponse            = "empty_response"
	CodeInvalidTemplateStructure = "invalid_template_structure"
	CodeValidationSyntax         = "validation_syntax_error"
)

// Completer sends a single request to a provider. *llm.Client implements it.
type Completer interface {
	Call(ctx context.Context, provider, apiKey string, req llm.Request) (string, error)
}

// AIContext is the per-request capability object for AI calls. It carries
// the session's credential and a way to record the model that worked.
type AIContext struct {
	Provider     string
	APIKey       string
	CurrentModel string

	// UpdateModel persists a new current model for the session. May be nil.
	UpdateModel func(ctx context.Context, model string) error
}

// GenerationError is the tagged error of a failed generation.
type GenerationError struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	ProviderStatus int    `json:"provider_status,omitempty"`
	Category       string `json:"category,omitempty"`
}

// TemplateResult is the outcome of GenerateTemplate.
type TemplateResult struct {
	Success      bool             `json:"success"`
	TemplateCode string           `json:"templateCode,omitempty"`
	Model        string           `json:"model,omitempty"`
	Attempts     int              `json:"attempts"`
	Error        *GenerationError `json:"error,omitempty"`
}

// GenerationService drives provider calls with model fallback.
type GenerationService struct {
	completer      Completer
	registry       *llm.Registry
	maxAttempts    int
	maxSuggestions int
	logger         *slog.Logger
}

// GenerationConfig holds the tunables of GenerationService.
type GenerationConfig struct {
	MaxModelAttempts int
	MaxSuggestions   int
}

// NewGenerationService creates a generation service.
func NewGenerationService(completer Completer, registry *llm.Registry, cfg GenerationConfig, logger *slog.Logger) *GenerationService {
	if cfg.MaxModelAttempts < 1 {
		cfg.MaxModelAttempts = 1
	}
	if cfg.MaxSuggestions < 1 {
		cfg.MaxSuggestions = DefaultMaxSuggestions
	}
	return &GenerationService{
		completer:      completer,
		registry:       registry,
		maxAttempts:    cfg.MaxModelAttempts,
		maxSuggestions: cfg.MaxSuggestions,
		logger:         logger.With("component", "generation"),
	}
}

// GenerateAIContent returns up to MaxSuggestions improved versions of a field.
func (s *GenerationService) GenerateAIContent(ctx context.Context, aiCtx AIContext, req models.GenerationRequest) ([]string, error) {
	if err := s.checkCredential(aiCtx); err != nil {
		return nil, err
	}
	if req.Action == "" {
		req.Action = models.ActionSuggest
	}
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}

	var suggestions []string
	run, err := s.withFallback(ctx, aiCtx, llm.Request{
		System:      contentSystemPrompt,
		Prompt:      BuildContentPrompt(req, s.maxSuggestions),
		Temperature: 0.7,
		MaxTokens:   1024,
	}, func(model, text string) error {
		parsed := ParseSuggestions(text, s.maxSuggestions)
		if len(parsed) == 0 {
			return fmt.Errorf("%w: no suggestions in response from %s", llm.ErrEmptyResponse, model)
		}
		suggestions = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("content generated",
		"provider", aiCtx.Provider,
		"model", run.model,
		"attempts", run.attempts,
		"action", req.Action,
		"suggestions", len(suggestions),
	)
	return suggestions, nil
}

// GenerateTemplate asks the provider for template source and accepts it only
// when it passes the validator. Failures are returned as a tagged result.
func (s *GenerationService) GenerateTemplate(ctx context.Context, aiCtx AIContext, prefs models.TemplatePreferences) TemplateResult {
	if err := s.checkCredential(aiCtx); err != nil {
		return TemplateResult{Error: ToGenerationError(err)}
	}

	var code string
	run, err := s.withFallback(ctx, aiCtx, llm.Request{
		System:      templateSystemPrompt,
		Prompt:      BuildTemplatePrompt(prefs),
		Temperature: 0.4,
		MaxTokens:   4096,
	}, func(model, text string) error {
		res := templatecode.Validate(text)
		if !res.Valid {
			s.logger.Info("generated template rejected",
				"provider", aiCtx.Provider,
				"model", model,
				"reason", res.Reason,
			)
			return res.Err
		}
		code = res.Code
		return nil
	})
	if err != nil {
		return TemplateResult{Model: run.model, Attempts: run.attempts, Error: ToGenerationError(err)}
	}

	return TemplateResult{
		Success:      true,
		TemplateCode: code,
		Model:        run.model,
		Attempts:     run.attempts,
	}
}

func (s *GenerationService) checkCredential(aiCtx AIContext) error {
	if aiCtx.APIKey == "" || aiCtx.Provider == "" {
		return llm.ErrMissingCredential
	}
	if !llm.IsValidProvider(aiCtx.Provider) {
		return fmt.Errorf("%w: %v %q", llm.ErrMissingCredential, llm.ErrUnknownProvider, aiCtx.Provider)
	}
	return nil
}

type fallbackRun struct {
	model    string
	attempts int
}

// withFallback walks the model chain starting at the context's current model.
// A provider error advances only when it is classified as ShouldFallback; a
// response rejected by accept always advances. The loop stops after
// maxAttempts models. On success after a fallback the working model is
// recorded through UpdateModel.
func (s *GenerationService) withFallback(ctx context.Context, aiCtx AIContext, req llm.Request, accept func(model, text string) error) (fallbackRun, error) {
	chain := s.registry.ModelChain(aiCtx.Provider, aiCtx.CurrentModel)
	if len(chain) == 0 {
		return fallbackRun{}, fmt.Errorf("%w: no models for %s", llm.ErrModelUnavailable, aiCtx.Provider)
	}
	if len(chain) > s.maxAttempts {
		chain = chain[:s.maxAttempts]
	}

	var run fallbackRun
	var lastErr error
	for i, model := range chain {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		run.model = model
		run.attempts = i + 1

		req.Model = model
		text, err := s.completer.Call(ctx, aiCtx.Provider, aiCtx.APIKey, req)
		if err != nil {
			lastErr = err
			if !llm.ShouldFallback(err) {
				s.logger.Warn("generation failed without fallback",
					"provider", aiCtx.Provider,
					"model", model,
					"error", err,
				)
				break
			}
			s.logger.Info("model failed, trying next",
				"provider", aiCtx.Provider,
				"model", model,
				"attempt", run.attempts,
				"error", err,
			)
			continue
		}

		if err := accept(model, text); err != nil {
			lastErr = err
			continue
		}

		if i > 0 {
			s.recordModel(ctx, aiCtx, model)
		}
		return run, nil
	}

	return run, lastErr
}

func (s *GenerationService) recordModel(ctx context.Context, aiCtx AIContext, model string) {
	if aiCtx.UpdateModel == nil || model == aiCtx.CurrentModel {
		return
	}
	if err := aiCtx.UpdateModel(ctx, model); err != nil {
		s.logger.Warn("failed to record working model",
			"provider", aiCtx.Provider,
			"model", model,
			"error", err,
		)
		return
	}
	s.logger.Info("current model updated after fallback",
		"provider", aiCtx.Provider,
		"from", aiCtx.CurrentModel,
		"to", model,
	)
}

// ToGenerationError maps an orchestrator error onto its wire form.
func ToGenerationError(err error) *GenerationError {
	if err == nil {
		return nil
	}

	var pErr *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return &GenerationError{Code: CodeMissingCredential, Message: llm.GetUserMessage(err)}
	case errors.Is(err, templatecode.ErrInvalidTemplateStructure):
		return &GenerationError{Code: CodeInvalidTemplateStructure, Message: err.Error()}
	case errors.Is(err, templatecode.ErrValidationSyntax):
		return &GenerationError{Code: CodeValidationSyntax, Message: err.Error()}
	case errors.As(err, &pErr):
		code := CodeProviderError
		if errors.Is(pErr, llm.ErrEmptyResponse) {
			code = CodeEmptyResponse
		}
		return &GenerationError{
			Code:           code,
			Message:        llm.GetUserMessage(pErr),
			ProviderStatus: pErr.StatusCode,
			Category:       pErr.Category,
		}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &GenerationError{Code: CodeEmptyResponse, Message: "The model returned no usable suggestions."}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &GenerationError{Code: CodeProviderError, Message: "The request was cancelled before the provider answered.", Category: "timeout"}
	default:
		return &GenerationError{Code: CodeProviderError, Message: err.Error(), Category: "unknown"}
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmylchreest/resumeai/internal/crypto"
	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// CredentialService manages the provider credential of a session. The API
// key is stored encrypted and bound to the session it belongs to.
type CredentialService struct {
	kv        repository.KVRepository
	encryptor *crypto.Encryptor
	registry  *llm.Registry
	logger    *slog.Logger
}

// NewCredentialService creates a credential service.
func NewCredentialService(kv repository.KVRepository, encryptor *crypto.Encryptor, registry *llm.Registry, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		kv:        kv,
		encryptor: encryptor,
		registry:  registry,
		logger:    logger.With("component", "credentials"),
	}
}

// Get returns the session's credential. A session without one gets an empty
// Credential, which is a valid state.
func (s *CredentialService) Get(ctx context.Context, sessionID string) (*models.Credential, error) {
	cred := &models.Credential{}

	sealed, _, err := s.kv.Get(ctx, sessionID, models.KeyAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load api key: %w", err)
	}
	if sealed != "" {
		cred.APIKey, err = s.encryptor.Decrypt(sessionID, sealed)
		if err != nil {
			// Unreadable after a key rotation; treat as not configured.
			s.logger.Warn("stored api key could not be decrypted", "session_id", sessionID, "error", err)
			cred.APIKey = ""
		}
	}

	if cred.Provider, _, err = s.kv.Get(ctx, sessionID, models.KeyService); err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if cred.CurrentModel, _, err = s.kv.Get(ctx, sessionID, models.KeyModel); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return cred, nil
}

// SaveInput holds a credential update.
type SaveInput struct {
	Provider string
	APIKey   string
	Model    string // optional; empty starts at the provider's preferred model
}

// Save replaces the session's credential.
func (s *CredentialService) Save(ctx context.Context, sessionID string, input SaveInput) (*models.Credential, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	apiKey := strings.TrimSpace(input.APIKey)
	model := strings.TrimSpace(input.Model)

	if !llm.IsValidProvider(provider) {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, input.Provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidInput)
	}

	sealed, err := s.encryptor.Encrypt(sessionID, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}

	if err := s.kv.Put(ctx, sessionID, models.KeyAPIKey, sealed); err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}
	if err := s.kv.Put(ctx, sessionID, models.KeyService, provider); err != nil {
		return nil, fmt.Errorf("failed to store provider: %w", err)
	}
	if model == "" {
		err = s.kv.Delete(ctx, sessionID, models.KeyModel)
	} else {
		err = s.kv.Put(ctx, sessionID, models.KeyModel, model)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store model: %w", err)
	}

	s.logger.Info("credential saved",
		"session_id", sessionID,
		"provider", provider,
		"model", model,
	)

	return &models.Credential{Provider: provider, APIKey: apiKey, CurrentModel: model}, nil
}

// Delete removes the session's credential.
func (s *CredentialService) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, sessionID, models.KeyAPIKey, models.KeyService, models.KeyModel); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	s.logger.Info("credential deleted", "session_id", sessionID)
	return nil
}

// UpdateCurrentModel switches the session's current model. An empty model
// advances to the next entry of the provider's chain, wrapping to the
// preferred model.
func (s *CredentialService) UpdateCurrentModel(ctx context.Context, sessionID, model string) (string, error) {
	cred, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !cred.IsConfigured() {
		return "", llm.ErrMissingCredential
	}

	model = strings.TrimSpace(model)
	if model == "" {
		current := cred.CurrentModel
		if current == "" {
			current = s.registry.GetPreferredModel(cred.Provider)
		}
		model = s.registry.NextModel(cred.Provider, current)
	}
	if model == "" {
		return "", fmt.Errorf("%w: no models for %s", llm.ErrModelUnavailable, cred.Provider)
	}

	if err := s.setModel(ctx, sessionID, model); err != nil {
		return "", err
	}
	s.logger.Info("current model switched",
		"session_id", sessionID,
		"provider", cred.Provider,
		"from", cred.CurrentModel,
		"to", model,
	)
	return model, nil
}

// ResolvedModel returns the model a call would start with.
func (s *CredentialService) ResolvedModel(cred *models.Credential) string {
	if cred.CurrentModel != "" {
		return cred.CurrentModel
	}
	return s.registry.GetPreferredModel(cred.Provider)
}

// Verify probes the provider with the stored key. Providers without a probe
// report false.
func (s *CredentialService) Verify(ctx context.Context, sessionID string) (bool, error) {
	cred, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !cred.IsConfigured() {
		return false, llm.ErrMissingCredential
	}
	return s.registry.CheckAvailability(ctx, cred.Provider, cred.APIKey), nil
}

// Context builds the AIContext for a session. A session without a credential
// gets an empty context; the orchestrator reports it as missing.
func (s *CredentialService) Context(ctx context.Context, sessionID string) (AIContext, error) {
	cred, err := s.Get(ctx, sessionID)
	if err != nil {
		return AIContext{}, err
	}
	return AIContext{
		Provider:     cred.Provider,
		APIKey:       cred.APIKey,
		CurrentModel: cred.CurrentModel,
		UpdateModel: func(ctx context.Context, model string) error {
			return s.setModel(ctx, sessionID, model)
		},
	}, nil
}

func (s *CredentialService) setModel(ctx context.Context, sessionID, model string) error {
	if err := s.kv.Put(ctx, sessionID, models.KeyModel, model); err != nil {
		return fmt.Errorf("failed to store model: %w", err)
	}
	return nil
}

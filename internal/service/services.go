// Package service contains the business logic layer.
// Every operation is scoped to a session; the session ID comes from the
// verified bearer token.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/resumeai/internal/auth"
	"github.com/jmylchreest/resumeai/internal/config"
	"github.com/jmylchreest/resumeai/internal/crypto"
	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// Service errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrLimitReached    = errors.New("limit reached")
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// Services holds all service instances.
type Services struct {
	Generation *GenerationService
	Credential *CredentialService
	Template   *TemplateService
	Resume     *ResumeService
	Snapshot   *SnapshotService
	Storage    *StorageService
	Session    *SessionService
	Cleanup    *CleanupService

	Registry  *llm.Registry
	Discovery *llm.Discovery
	LLM       *llm.Client
	Tokens    *auth.TokenManager
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	storageSvc, err := NewStorageService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	endpoints := llm.DefaultEndpoints().With(cfg.ProviderOverrides())
	llmClient := llm.NewClient(logger, endpoints, cfg.AIRequestTimeout)
	registry := llm.InitRegistry(endpoints, llmClient.HTTPClient())
	discovery := llm.NewDiscovery(registry, endpoints, llmClient.HTTPClient(), logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionExpiry)

	resumeSvc := NewResumeService(repos.KV, cfg.MaxImportBytes, logger)
	sessionSvc := NewSessionService(repos, storageSvc, tokens, logger)

	return &Services{
		Generation: NewGenerationService(llmClient, registry, GenerationConfig{
			MaxModelAttempts: cfg.AIMaxModelAttempts,
			MaxSuggestions:   cfg.AIMaxSuggestions,
		}, logger),
		Credential: NewCredentialService(repos.KV, encryptor, registry, logger),
		Template:   NewTemplateService(repos.KV, resumeSvc, logger),
		Resume:     resumeSvc,
		Snapshot:   NewSnapshotService(repos.Snapshot, storageSvc, resumeSvc, logger),
		Storage:    storageSvc,
		Session:    sessionSvc,
		Cleanup:    NewCleanupService(repos.Session, sessionSvc, logger),
		Registry:   registry,
		Discovery:  discovery,
		LLM:        llmClient,
		Tokens:     tokens,
	}, nil
}

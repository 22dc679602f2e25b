package routes

import (
	"context"

	"github.com/jmylchreest/resumeai/internal/http/handlers"
)

// SessionHandlers defines the session lifecycle operations.
type SessionHandlers interface {
	CreateSession(ctx context.Context, input *struct{}) (*handlers.SessionTokenOutput, error)
	RefreshSession(ctx context.Context, input *struct{}) (*handlers.SessionTokenOutput, error)
	DeleteSession(ctx context.Context, input *struct{}) (*struct{}, error)
}

// AIHandlers defines provider, credential and content generation operations.
type AIHandlers interface {
	ListProviders(ctx context.Context, input *struct{}) (*handlers.ListProvidersOutput, error)
	ListModels(ctx context.Context, input *handlers.ListModelsInput) (*handlers.ListModelsOutput, error)
	GetCredential(ctx context.Context, input *struct{}) (*handlers.CredentialOutput, error)
	PutCredential(ctx context.Context, input *handlers.PutCredentialInput) (*handlers.CredentialOutput, error)
	DeleteCredential(ctx context.Context, input *struct{}) (*struct{}, error)
	UpdateModel(ctx context.Context, input *handlers.UpdateModelInput) (*handlers.UpdateModelOutput, error)
	VerifyCredential(ctx context.Context, input *struct{}) (*handlers.VerifyCredentialOutput, error)
	Suggestions(ctx context.Context, input *handlers.SuggestionsInput) (*handlers.SuggestionsOutput, error)
}

// TemplateHandlers defines template operations.
type TemplateHandlers interface {
	ValidateTemplate(ctx context.Context, input *handlers.ValidateTemplateInput) (*handlers.ValidateTemplateOutput, error)
	ListBuiltinTemplates(ctx context.Context, input *struct{}) (*handlers.BuiltinTemplatesOutput, error)
	ListTemplates(ctx context.Context, input *struct{}) (*handlers.ListTemplatesOutput, error)
	GetTemplate(ctx context.Context, input *handlers.TemplateIDInput) (*handlers.TemplateOutput, error)
	AddTemplate(ctx context.Context, input *handlers.AddTemplateInput) (*handlers.TemplateOutput, error)
	DeleteTemplate(ctx context.Context, input *handlers.TemplateIDInput) (*struct{}, error)
	RenderTemplate(ctx context.Context, input *handlers.RenderTemplateInput) (*handlers.RenderTemplateOutput, error)
	GenerateTemplate(ctx context.Context, input *handlers.GenerateTemplateInput) (*handlers.GenerateTemplateOutput, error)
}

// ResumeHandlers defines resume and snapshot operations.
type ResumeHandlers interface {
	GetResume(ctx context.Context, input *struct{}) (*handlers.ResumeOutput, error)
	PutResume(ctx context.Context, input *handlers.PutResumeInput) (*handlers.ResumeOutput, error)
	ExportResume(ctx context.Context, input *struct{}) (*handlers.ExportResumeOutput, error)
	ImportResume(ctx context.Context, input *handlers.ImportResumeInput) (*handlers.ResumeOutput, error)
	CreateSnapshot(ctx context.Context, input *handlers.CreateSnapshotInput) (*handlers.SnapshotOutput, error)
	ListSnapshots(ctx context.Context, input *handlers.ListSnapshotsInput) (*handlers.ListSnapshotsOutput, error)
	GetSnapshot(ctx context.Context, input *handlers.SnapshotIDInput) (*handlers.SnapshotDetailOutput, error)
	RestoreSnapshot(ctx context.Context, input *handlers.SnapshotIDInput) (*handlers.ResumeOutput, error)
}

// Handlers contains all handler implementations needed for route registration.
type Handlers struct {
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)
	Livez       func(ctx context.Context, input *struct{}) (*handlers.LivezOutput, error)
	Readyz      func(ctx context.Context, input *struct{}) (*handlers.ReadyzOutput, error)

	Session  SessionHandlers
	AI       AIHandlers
	Template TemplateHandlers
	Resume   ResumeHandlers
}

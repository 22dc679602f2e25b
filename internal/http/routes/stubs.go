package routes

import (
	"context"

	"github.com/jmylchreest/resumeai/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// They return nil responses; Huma only needs their signatures to build the
// OpenAPI document.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: stubHealthCheck,
		Livez:       stubLivez,
		Readyz:      stubReadyz,

		Session:  stubSessionHandlers{},
		AI:       stubAIHandlers{},
		Template: stubTemplateHandlers{},
		Resume:   stubResumeHandlers{},
	}
}

func stubHealthCheck(_ context.Context, _ *struct{}) (*handlers.HealthCheckOutput, error) {
	return nil, nil
}

func stubLivez(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

func stubReadyz(_ context.Context, _ *struct{}) (*handlers.ReadyzOutput, error) {
	return nil, nil
}

type stubSessionHandlers struct{}

func (stubSessionHandlers) CreateSession(_ context.Context, _ *struct{}) (*handlers.SessionTokenOutput, error) {
	return nil, nil
}

func (stubSessionHandlers) RefreshSession(_ context.Context, _ *struct{}) (*handlers.SessionTokenOutput, error) {
	return nil, nil
}

func (stubSessionHandlers) DeleteSession(_ context.Context, _ *struct{}) (*struct{}, error) {
	return nil, nil
}

type stubAIHandlers struct{}

func (stubAIHandlers) ListProviders(_ context.Context, _ *struct{}) (*handlers.ListProvidersOutput, error) {
	return nil, nil
}

func (stubAIHandlers) ListModels(_ context.Context, _ *handlers.ListModelsInput) (*handlers.ListModelsOutput, error) {
	return nil, nil
}

func (stubAIHandlers) GetCredential(_ context.Context, _ *struct{}) (*handlers.CredentialOutput, error) {
	return nil, nil
}

func (stubAIHandlers) PutCredential(_ context.Context, _ *handlers.PutCredentialInput) (*handlers.CredentialOutput, error) {
	return nil, nil
}

func (stubAIHandlers) DeleteCredential(_ context.Context, _ *struct{}) (*struct{}, error) {
	return nil, nil
}

func (stubAIHandlers) UpdateModel(_ context.Context, _ *handlers.UpdateModelInput) (*handlers.UpdateModelOutput, error) {
	return nil, nil
}

func (stubAIHandlers) VerifyCredential(_ context.Context, _ *struct{}) (*handlers.VerifyCredentialOutput, error) {
	return nil, nil
}

func (stubAIHandlers) Suggestions(_ context.Context, _ *handlers.SuggestionsInput) (*handlers.SuggestionsOutput, error) {
	return nil, nil
}

type stubTemplateHandlers struct{}

func (stubTemplateHandlers) ValidateTemplate(_ context.Context, _ *handlers.ValidateTemplateInput) (*handlers.ValidateTemplateOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) ListBuiltinTemplates(_ context.Context, _ *struct{}) (*handlers.BuiltinTemplatesOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) ListTemplates(_ context.Context, _ *struct{}) (*handlers.ListTemplatesOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) GetTemplate(_ context.Context, _ *handlers.TemplateIDInput) (*handlers.TemplateOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) AddTemplate(_ context.Context, _ *handlers.AddTemplateInput) (*handlers.TemplateOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) DeleteTemplate(_ context.Context, _ *handlers.TemplateIDInput) (*struct{}, error) {
	return nil, nil
}

func (stubTemplateHandlers) RenderTemplate(_ context.Context, _ *handlers.RenderTemplateInput) (*handlers.RenderTemplateOutput, error) {
	return nil, nil
}

func (stubTemplateHandlers) GenerateTemplate(_ context.Context, _ *handlers.GenerateTemplateInput) (*handlers.GenerateTemplateOutput, error) {
	return nil, nil
}

type stubResumeHandlers struct{}

func (stubResumeHandlers) GetResume(_ context.Context, _ *struct{}) (*handlers.ResumeOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) PutResume(_ context.Context, _ *handlers.PutResumeInput) (*handlers.ResumeOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) ExportResume(_ context.Context, _ *struct{}) (*handlers.ExportResumeOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) ImportResume(_ context.Context, _ *handlers.ImportResumeInput) (*handlers.ResumeOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) CreateSnapshot(_ context.Context, _ *handlers.CreateSnapshotInput) (*handlers.SnapshotOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) ListSnapshots(_ context.Context, _ *handlers.ListSnapshotsInput) (*handlers.ListSnapshotsOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) GetSnapshot(_ context.Context, _ *handlers.SnapshotIDInput) (*handlers.SnapshotDetailOutput, error) {
	return nil, nil
}

func (stubResumeHandlers) RestoreSnapshot(_ context.Context, _ *handlers.SnapshotIDInput) (*handlers.ResumeOutput, error) {
	return nil, nil
}

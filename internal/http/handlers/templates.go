package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/service"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

// TemplateHandler serves template validation, storage, rendering and
// generation.
type TemplateHandler struct {
	templates   *service.TemplateService
	credentials *service.CredentialService
	generation  *service.GenerationService
	logger      *slog.Logger
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(svc *service.Services, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates:   svc.Template,
		credentials: svc.Credential,
		generation:  svc.Generation,
		logger:      logger,
	}
}

// ValidateTemplateInput carries template source to check.
type ValidateTemplateInput struct {
	Body struct {
		Code string `json:"code" doc:"Template source"`
	}
}

// ValidateTemplateOutput reports the validation verdict.
type ValidateTemplateOutput struct {
	Body struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason,omitempty"`
		Code   string `json:"code,omitempty" doc:"Error code when invalid"`
		Offset *int   `json:"offset,omitempty" doc:"Byte offset of the problem in the normalized source"`
	}
}

// ValidateTemplate checks template source without storing it.
func (h *TemplateHandler) ValidateTemplate(ctx context.Context, input *ValidateTemplateInput) (*ValidateTemplateOutput, error) {
	res := templatecode.Validate(input.Body.Code)

	out := &ValidateTemplateOutput{}
	out.Body.Valid = res.Valid
	if res.Valid {
		return out, nil
	}
	out.Body.Reason = res.Reason
	out.Body.Code = validationCode(res.Err)
	var tErr *templatecode.Error
	if errors.As(res.Err, &tErr) && tErr.Offset >= 0 {
		offset := tErr.Offset
		out.Body.Offset = &offset
	}
	return out, nil
}

func validationCode(err error) string {
	if errors.Is(err, templatecode.ErrValidationSyntax) {
		return service.CodeValidationSyntax
	}
	return service.CodeInvalidTemplateStructure
}

// BuiltinTemplatesOutput lists shipped templates.
type BuiltinTemplatesOutput struct {
	Body struct {
		Templates []templatecode.Builtin `json:"templates"`
	}
}

// ListBuiltinTemplates returns the shipped templates.
func (h *TemplateHandler) ListBuiltinTemplates(ctx context.Context, input *struct{}) (*BuiltinTemplatesOutput, error) {
	out := &BuiltinTemplatesOutput{}
	out.Body.Templates = h.templates.Builtins()
	return out, nil
}

// ListTemplatesOutput lists the session's custom templates.
type ListTemplatesOutput struct {
	Body struct {
		Templates []models.CustomTemplate `json:"templates"`
	}
}

// ListTemplates returns the session's custom templates.
func (h *TemplateHandler) ListTemplates(ctx context.Context, input *struct{}) (*ListTemplatesOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := h.templates.List(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "list templates", err)
	}
	out := &ListTemplatesOutput{}
	out.Body.Templates = templates
	if out.Body.Templates == nil {
		out.Body.Templates = []models.CustomTemplate{}
	}
	return out, nil
}

// TemplateIDInput selects a template.
type TemplateIDInput struct {
	ID string `path:"id" doc:"Template ID"`
}

// TemplateOutput wraps one custom template.
type TemplateOutput struct {
	Body *models.CustomTemplate
}

// GetTemplate returns one custom template.
func (h *TemplateHandler) GetTemplate(ctx context.Context, input *TemplateIDInput) (*TemplateOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := h.templates.Get(ctx, sessionID, input.ID)
	if err != nil {
		return nil, toHumaError(h.logger, "get template", err)
	}
	return &TemplateOutput{Body: tmpl}, nil
}

// AddTemplateInput stores a custom template.
type AddTemplateInput struct {
	Body struct {
		Name        string                     `json:"name" minLength:"1" maxLength:"100"`
		Code        string                     `json:"code" minLength:"1"`
		Preferences models.TemplatePreferences `json:"preferences,omitempty"`
	}
}

// AddTemplate validates and stores a custom template.
func (h *TemplateHandler) AddTemplate(ctx context.Context, input *AddTemplateInput) (*TemplateOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := h.templates.Add(ctx, sessionID, service.AddTemplateInput{
		Name:        input.Body.Name,
		Code:        input.Body.Code,
		Preferences: input.Body.Preferences,
	})
	if err != nil {
		return nil, toHumaError(h.logger, "add template", err)
	}
	return &TemplateOutput{Body: tmpl}, nil
}

// DeleteTemplate removes a custom template.
func (h *TemplateHandler) DeleteTemplate(ctx context.Context, input *TemplateIDInput) (*struct{}, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.templates.Delete(ctx, sessionID, input.ID); err != nil {
		return nil, toHumaError(h.logger, "delete template", err)
	}
	return nil, nil
}

// RenderTemplateInput renders a template. Without a resume body the
// session's stored resume is used.
type RenderTemplateInput struct {
	ID   string `path:"id" doc:"Builtin or custom template ID"`
	Body struct {
		Resume *models.Resume `json:"resume,omitempty"`
	}
}

// RenderTemplateOutput carries rendered markup.
type RenderTemplateOutput struct {
	Body struct {
		HTML string `json:"html"`
	}
}

// RenderTemplate renders a builtin or custom template to HTML.
func (h *TemplateHandler) RenderTemplate(ctx context.Context, input *RenderTemplateInput) (*RenderTemplateOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	html, err := h.templates.Render(ctx, sessionID, input.ID, input.Body.Resume)
	if err != nil {
		return nil, toHumaError(h.logger, "render template", err)
	}
	out := &RenderTemplateOutput{}
	out.Body.HTML = html
	return out, nil
}

// GenerateTemplateInput describes the template to generate.
type GenerateTemplateInput struct {
	Body models.TemplatePreferences
}

// GenerateTemplateOutput carries the tagged generation result.
type GenerateTemplateOutput struct {
	Body service.TemplateResult
}

// GenerateTemplate asks the configured provider for a template. Generation
// failures are reported in the body; only session errors fail the request.
func (h *TemplateHandler) GenerateTemplate(ctx context.Context, input *GenerateTemplateInput) (*GenerateTemplateOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	aiCtx, err := h.credentials.Context(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "load credential", err)
	}
	return &GenerateTemplateOutput{Body: h.generation.GenerateTemplate(ctx, aiCtx, input.Body)}, nil
}

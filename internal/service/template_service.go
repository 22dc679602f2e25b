package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

// Custom template limits.
const (
	MaxCustomTemplates   = 50
	MaxTemplateNameChars = 100
)

// TemplateService stores validated custom templates and renders templates
// against resume data.
type TemplateService struct {
	kv      repository.KVRepository
	resumes *ResumeService
	logger  *slog.Logger
}

// NewTemplateService creates a template service.
func NewTemplateService(kv repository.KVRepository, resumes *ResumeService, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		kv:      kv,
		resumes: resumes,
		logger:  logger.With("component", "templates"),
	}
}

// List returns the session's custom templates, oldest first.
func (s *TemplateService) List(ctx context.Context, sessionID string) ([]models.CustomTemplate, error) {
	raw, found, err := s.kv.Get(ctx, sessionID, models.KeyCustomTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if !found || raw == "" {
		return []models.CustomTemplate{}, nil
	}

	var templates []models.CustomTemplate
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		s.logger.Warn("stored templates are unreadable", "session_id", sessionID, "error", err)
		return []models.CustomTemplate{}, nil
	}
	return templates, nil
}

// Get returns one custom template.
func (s *TemplateService) Get(ctx context.Context, sessionID, id string) (*models.CustomTemplate, error) {
	templates, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, ErrNotFound
}

// AddTemplateInput describes a template to store.
type AddTemplateInput struct {
	Name        string
	Code        string
	Preferences models.TemplatePreferences
}

// Add validates code and stores it as a new custom template. Code that fails
// validation is never stored; the returned error wraps the validator's
// sentinel.
func (s *TemplateService) Add(ctx context.Context, sessionID string, input AddTemplateInput) (*models.CustomTemplate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxTemplateNameChars {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MaxTemplateNameChars)
	}

	res := templatecode.Validate(input.Code)
	if !res.Valid {
		s.logger.Info("template rejected", "session_id", sessionID, "reason", res.Reason)
		return nil, res.Err
	}

	templates, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(templates) >= MaxCustomTemplates {
		return nil, fmt.Errorf("%w: at most %d custom templates", ErrLimitReached, MaxCustomTemplates)
	}

	tmpl := models.CustomTemplate{
		ID:          ulid.Make().String(),
		Name:        name,
		Code:        res.Code,
		Preferences: input.Preferences,
		CreatedAt:   time.Now().UTC(),
		IsCustom:    true,
	}
	templates = append(templates, tmpl)

	if err := s.save(ctx, sessionID, templates); err != nil {
		return nil, err
	}

	s.logger.Info("template added", "session_id", sessionID, "template_id", tmpl.ID, "code_length", len(tmpl.Code))
	return &tmpl, nil
}

// Delete removes a custom template.
func (s *TemplateService) Delete(ctx context.Context, sessionID, id string) error {
	templates, err := s.List(ctx, sessionID)
	if err != nil {
		return err
	}

	kept := templates[:0]
	removed := false
	for _, t := range templates {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return ErrNotFound
	}

	if err := s.save(ctx, sessionID, kept); err != nil {
		return err
	}
	s.logger.Info("template deleted", "session_id", sessionID, "template_id", id)
	return nil
}

// Builtins returns the templates shipped with the service.
func (s *TemplateService) Builtins() []templatecode.Builtin {
	return templatecode.Builtins()
}

// Render renders a builtin or custom template. A nil resume renders the
// session's stored resume.
func (s *TemplateService) Render(ctx context.Context, sessionID, id string, resume *models.Resume) (string, error) {
	code, err := s.lookupCode(ctx, sessionID, id)
	if err != nil {
		return "", err
	}

	// Stored code is compiled again; the store is not trusted to be unmodified.
	tmpl, err := templatecode.Compile(code)
	if err != nil {
		return "", err
	}

	if resume == nil {
		resume, err = s.resumes.Get(ctx, sessionID)
		if err != nil {
			return "", err
		}
	}
	data, err := resume.TemplateData()
	if err != nil {
		return "", fmt.Errorf("failed to prepare resume data: %w", err)
	}

	return tmpl.Render(data)
}

func (s *TemplateService) lookupCode(ctx context.Context, sessionID, id string) (string, error) {
	if b, ok := templatecode.BuiltinByID(id); ok {
		return b.Code, nil
	}
	tmpl, err := s.Get(ctx, sessionID, id)
	if err != nil {
		return "", err
	}
	return tmpl.Code, nil
}

func (s *TemplateService) save(ctx context.Context, sessionID string, templates []models.CustomTemplate) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	if err := s.kv.Put(ctx, sessionID, models.KeyCustomTemplates, string(data)); err != nil {
		return fmt.Errorf("failed to store templates: %w", err)
	}
	return nil
}

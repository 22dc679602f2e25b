package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// ResumeService stores the session's resume data.
type ResumeService struct {
	kv             repository.KVRepository
	maxImportBytes int64
	logger         *slog.Logger
}

// NewResumeService creates a resume service. Imports larger than
// maxImportBytes are rejected.
func NewResumeService(kv repository.KVRepository, maxImportBytes int64, logger *slog.Logger) *ResumeService {
	if maxImportBytes <= 0 {
		maxImportBytes = 1 << 20
	}
	return &ResumeService{
		kv:             kv,
		maxImportBytes: maxImportBytes,
		logger:         logger.With("component", "resume"),
	}
}

// Get returns the stored resume, or an empty one.
func (s *ResumeService) Get(ctx context.Context, sessionID string) (*models.Resume, error) {
	raw, found, err := s.kv.Get(ctx, sessionID, models.KeyResumeData)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	resume := &models.Resume{}
	if !found || raw == "" {
		return resume, nil
	}
	if err := json.Unmarshal([]byte(raw), resume); err != nil {
		s.logger.Warn("stored resume is unreadable", "session_id", sessionID, "error", err)
		return &models.Resume{}, nil
	}
	return resume, nil
}

// Save validates and replaces the stored resume.
func (s *ResumeService) Save(ctx context.Context, sessionID string, resume *models.Resume) error {
	if resume == nil {
		return fmt.Errorf("%w: resume is required", ErrInvalidInput)
	}
	if err := resume.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	data, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("failed to encode resume: %w", err)
	}
	if err := s.kv.Put(ctx, sessionID, models.KeyResumeData, string(data)); err != nil {
		return fmt.Errorf("failed to store resume: %w", err)
	}

	s.logger.Debug("resume saved", "session_id", sessionID, "size_bytes", len(data))
	return nil
}

// Export returns the stored resume as indented JSON with a download filename.
func (s *ResumeService) Export(ctx context.Context, sessionID string) ([]byte, string, error) {
	resume, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	data, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode resume: %w", err)
	}
	return data, resume.ExportFilename(), nil
}

// Import parses an uploaded resume document and replaces the stored resume.
// Unknown fields are ignored; malformed or oversized input is rejected.
func (s *ResumeService) Import(ctx context.Context, sessionID string, r io.Reader) (*models.Resume, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxImportBytes {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, s.maxImportBytes)
	}

	resume, err := ParseResume(data)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, sessionID, resume); err != nil {
		return nil, err
	}

	s.logger.Info("resume imported", "session_id", sessionID, "size_bytes", len(data))
	return resume, nil
}

// ParseResume decodes a resume document. It must be a single JSON object.
func ParseResume(data []byte) (*models.Resume, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: resume must be a JSON object", ErrInvalidInput)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	resume := &models.Resume{}
	if err := dec.Decode(resume); err != nil {
		return nil, fmt.Errorf("%w: malformed resume: %v", ErrInvalidInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after resume", ErrInvalidInput)
	}
	return resume, nil
}

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/service"
)

// ResumeHandler serves the stored resume and its snapshots.
type ResumeHandler struct {
	resumes   *service.ResumeService
	snapshots *service.SnapshotService
	logger    *slog.Logger
}

// NewResumeHandler creates a new resume handler.
func NewResumeHandler(svc *service.Services, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{
		resumes:   svc.Resume,
		snapshots: svc.Snapshot,
		logger:    logger,
	}
}

// ResumeOutput wraps a resume document.
type ResumeOutput struct {
	Body *models.Resume
}

// GetResume returns the session's resume. A new session gets an empty one.
func (h *ResumeHandler) GetResume(ctx context.Context, input *struct{}) (*ResumeOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := h.resumes.Get(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "get resume", err)
	}
	return &ResumeOutput{Body: resume}, nil
}

// PutResumeInput replaces the resume.
type PutResumeInput struct {
	Body models.Resume
}

// PutResume validates and stores the resume.
func (h *ResumeHandler) PutResume(ctx context.Context, input *PutResumeInput) (*ResumeOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	resume := input.Body
	if err := h.resumes.Save(ctx, sessionID, &resume); err != nil {
		return nil, toHumaError(h.logger, "save resume", err)
	}
	return &ResumeOutput{Body: &resume}, nil
}

// ExportResumeOutput is a JSON file download.
type ExportResumeOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ExportResume returns the resume as a downloadable JSON document.
func (h *ResumeHandler) ExportResume(ctx context.Context, input *struct{}) (*ExportResumeOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	data, filename, err := h.resumes.Export(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "export resume", err)
	}
	return &ExportResumeOutput{
		ContentType:        "application/json",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", filename),
		Body:               data,
	}, nil
}

// ImportResumeInput carries an uploaded resume document.
type ImportResumeInput struct {
	RawBody []byte `contentType:"application/json"`
}

// ImportResume replaces the resume with an uploaded document.
func (h *ResumeHandler) ImportResume(ctx context.Context, input *ImportResumeInput) (*ResumeOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := h.resumes.Import(ctx, sessionID, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, toHumaError(h.logger, "import resume", err)
	}
	return &ResumeOutput{Body: resume}, nil
}

// ========================================
// Snapshots
// ========================================

// CreateSnapshotInput labels a new snapshot.
type CreateSnapshotInput struct {
	Body struct {
		Label string `json:"label,omitempty" maxLength:"200"`
	}
}

// SnapshotOutput wraps snapshot metadata.
type SnapshotOutput struct {
	Body *models.Snapshot
}

// CreateSnapshot stores the current resume in object storage.
func (h *ResumeHandler) CreateSnapshot(ctx context.Context, input *CreateSnapshotInput) (*SnapshotOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := h.snapshots.Create(ctx, sessionID, input.Body.Label)
	if err != nil {
		return nil, toHumaError(h.logger, "create snapshot", err)
	}
	return &SnapshotOutput{Body: snapshot}, nil
}

// ListSnapshotsInput pages the snapshot list.
type ListSnapshotsInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100"`
}

// ListSnapshotsOutput lists snapshots newest first.
type ListSnapshotsOutput struct {
	Body struct {
		Snapshots []*models.Snapshot `json:"snapshots"`
	}
}

// ListSnapshots returns the session's snapshots.
func (h *ResumeHandler) ListSnapshots(ctx context.Context, input *ListSnapshotsInput) (*ListSnapshotsOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	snapshots, err := h.snapshots.List(ctx, sessionID, input.Limit)
	if err != nil {
		return nil, toHumaError(h.logger, "list snapshots", err)
	}
	out := &ListSnapshotsOutput{}
	out.Body.Snapshots = snapshots
	return out, nil
}

// SnapshotIDInput selects a snapshot.
type SnapshotIDInput struct {
	ID string `path:"id" doc:"Snapshot ID"`
}

// SnapshotDetailOutput is a snapshot with its resume.
type SnapshotDetailOutput struct {
	Body struct {
		Snapshot *models.Snapshot `json:"snapshot"`
		Resume   *models.Resume   `json:"resume"`
	}
}

// GetSnapshot returns a snapshot and the resume it holds.
func (h *ResumeHandler) GetSnapshot(ctx context.Context, input *SnapshotIDInput) (*SnapshotDetailOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, resume, err := h.snapshots.Get(ctx, sessionID, input.ID)
	if err != nil {
		return nil, toHumaError(h.logger, "get snapshot", err)
	}
	out := &SnapshotDetailOutput{}
	out.Body.Snapshot = snapshot
	out.Body.Resume = resume
	return out, nil
}

// RestoreSnapshot replaces the resume with a snapshot's contents.
func (h *ResumeHandler) RestoreSnapshot(ctx context.Context, input *SnapshotIDInput) (*ResumeOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := h.snapshots.Restore(ctx, sessionID, input.ID)
	if err != nil {
		return nil, toHumaError(h.logger, "restore snapshot", err)
	}
	return &ResumeOutput{Body: resume}, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// MaxSnapshotLabelChars bounds snapshot labels.
const MaxSnapshotLabelChars = 200

// SnapshotService keeps point-in-time copies of a session's resume in object
// storage, indexed in the database.
type SnapshotService struct {
	repo    repository.SnapshotRepository
	storage *StorageService
	resumes *ResumeService
	logger  *slog.Logger
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(repo repository.SnapshotRepository, storage *StorageService, resumes *ResumeService, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{
		repo:    repo,
		storage: storage,
		resumes: resumes,
		logger:  logger.With("component", "snapshots"),
	}
}

// IsEnabled reports whether snapshots can be stored.
func (s *SnapshotService) IsEnabled() bool {
	return s.storage != nil && s.storage.IsEnabled()
}

// SnapshotKey returns the object key of a snapshot.
func SnapshotKey(sessionID, snapshotID string) string {
	return fmt.Sprintf("resumes/%s/%s.json", sessionID, snapshotID)
}

// Create stores the session's current resume as a new snapshot.
func (s *SnapshotService) Create(ctx context.Context, sessionID, label string) (*models.Snapshot, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageDisabled
	}
	label = strings.TrimSpace(label)
	if utf8.RuneCountInString(label) > MaxSnapshotLabelChars {
		return nil, fmt.Errorf("%w: label exceeds %d characters", ErrInvalidInput, MaxSnapshotLabelChars)
	}

	resume, err := s.resumes.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}

	snapshot := &models.Snapshot{
		ID:        ulid.Make().String(),
		SessionID: sessionID,
		Label:     label,
		SizeBytes: int64(len(data)),
	}
	snapshot.ObjectKey = SnapshotKey(sessionID, snapshot.ID)

	if err := s.storage.PutJSON(ctx, snapshot.ObjectKey, data); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, snapshot); err != nil {
		if _, delErr := s.storage.DeleteObjects(ctx, []string{snapshot.ObjectKey}); delErr != nil {
			s.logger.Warn("failed to remove orphaned snapshot object", "key", snapshot.ObjectKey, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	s.logger.Info("snapshot created",
		"session_id", sessionID,
		"snapshot_id", snapshot.ID,
		"size_bytes", snapshot.SizeBytes,
	)
	return snapshot, nil
}

// List returns the session's snapshots, newest first.
func (s *SnapshotService) List(ctx context.Context, sessionID string, limit int) ([]*models.Snapshot, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageDisabled
	}
	snapshots, err := s.repo.ListBySessionID(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if snapshots == nil {
		snapshots = []*models.Snapshot{}
	}
	return snapshots, nil
}

// Get returns a snapshot and the resume it holds.
func (s *SnapshotService) Get(ctx context.Context, sessionID, id string) (*models.Snapshot, *models.Resume, error) {
	if !s.IsEnabled() {
		return nil, nil, ErrStorageDisabled
	}
	snapshot, err := s.repo.GetByID(ctx, sessionID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, nil, ErrNotFound
	}

	data, err := s.storage.GetObject(ctx, snapshot.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	resume, err := ParseResume(data)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s is unreadable: %w", id, err)
	}
	return snapshot, resume, nil
}

// Restore replaces the session's resume with a snapshot's contents.
func (s *SnapshotService) Restore(ctx context.Context, sessionID, id string) (*models.Resume, error) {
	_, resume, err := s.Get(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	if err := s.resumes.Save(ctx, sessionID, resume); err != nil {
		return nil, err
	}
	s.logger.Info("snapshot restored", "session_id", sessionID, "snapshot_id", id)
	return resume, nil
}

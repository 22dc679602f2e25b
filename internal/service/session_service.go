package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/resumeai/internal/auth"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// ErrSessionNotFound is returned for a well-formed token whose session no
// longer exists.
var ErrSessionNotFound = errors.New("session not found")

// SessionToken is a signed bearer token for a session.
type SessionToken struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// touchInterval bounds how often authentication rewrites last_seen_at.
const touchInterval = 5 * time.Minute

// SessionService creates, authenticates and deletes browser sessions.
type SessionService struct {
	sessions  repository.SessionRepository
	snapshots repository.SnapshotRepository
	storage   *StorageService
	tokens    *auth.TokenManager
	logger    *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(repos *repository.Repositories, storage *StorageService, tokens *auth.TokenManager, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions:  repos.Session,
		snapshots: repos.Snapshot,
		storage:   storage,
		tokens:    tokens,
		logger:    logger.With("component", "sessions"),
	}
}

// Create starts a new session and returns its token.
func (s *SessionService) Create(ctx context.Context) (*SessionToken, error) {
	session := &models.Session{}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(session.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session created", "session_id", session.ID)
	return &SessionToken{SessionID: session.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate verifies a token and returns the session ID it names. Activity
// is recorded at most once per touchInterval.
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID())
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}
	if time.Since(session.LastSeenAt) >= touchInterval {
		if err := s.sessions.Touch(ctx, session.ID); err != nil {
			s.logger.Warn("failed to record session activity", "session_id", session.ID, "error", err)
		}
	}
	return session.ID, nil
}

// Refresh issues a new token for an existing session and marks it as seen.
func (s *SessionService) Refresh(ctx context.Context, sessionID string) (*SessionToken, error) {
	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}
	token, expiresAt, err := s.tokens.Issue(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionToken{SessionID: sessionID, Token: token, ExpiresAt: expiresAt}, nil
}

// Delete removes a session with all of its data, including snapshot objects.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	objects, err := s.deleteSession(ctx, sessionID)
	if err != nil {
		return err
	}
	s.logger.Info("session deleted", "session_id", sessionID, "objects_deleted", objects)
	return nil
}

// deleteSession removes snapshot objects first so a storage failure leaves
// the index intact for a later attempt.
func (s *SessionService) deleteSession(ctx context.Context, sessionID string) (int, error) {
	objects := 0
	if s.storage != nil && s.storage.IsEnabled() {
		keys, err := s.snapshots.ListObjectKeysBySessionID(ctx, sessionID)
		if err != nil {
			return 0, fmt.Errorf("failed to list snapshot objects: %w", err)
		}
		objects, err = s.storage.DeleteObjects(ctx, keys)
		if err != nil {
			return objects, err
		}
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return objects, fmt.Errorf("failed to delete session: %w", err)
	}
	return objects, nil
}

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/resumeai/internal/repository"
)

// cleanupBatchSize is how many idle sessions are fetched per query.
const cleanupBatchSize = 200

// CleanupService removes sessions that have been idle longer than their
// tokens can live.
type CleanupService struct {
	sessions repository.SessionRepository
	sessSvc  *SessionService
	logger   *slog.Logger
	now      func() time.Time
	running  atomic.Bool
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(sessions repository.SessionRepository, sessSvc *SessionService, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		sessSvc:  sessSvc,
		logger:   logger.With("component", "cleanup"),
		now:      time.Now,
	}
}

// CleanupResult contains the results of a cleanup operation.
type CleanupResult struct {
	SessionsDeleted int
	ObjectsDeleted  int
	Errors          []error
}

// CleanupIdleSessions deletes sessions last seen before now-maxIdle. A
// session that fails to delete is skipped and reported in Errors.
func (s *CleanupService) CleanupIdleSessions(ctx context.Context, maxIdle time.Duration) (*CleanupResult, error) {
	s.running.Store(true)
	defer s.running.Store(false)

	result := &CleanupResult{}
	cutoff := s.now().Add(-maxIdle)

	s.logger.Info("starting session cleanup",
		"max_idle", maxIdle.String(),
		"cutoff", cutoff.Format(time.RFC3339),
	)

	failed := make(map[string]bool)
	for {
		ids, err := s.sessions.ListIdleBefore(ctx, cutoff, cleanupBatchSize+len(failed))
		if err != nil {
			s.logger.Error("failed to list idle sessions", "error", err)
			return result, err
		}

		progressed := false
		for _, id := range ids {
			if failed[id] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}
			objects, err := s.sessSvc.deleteSession(ctx, id)
			result.ObjectsDeleted += objects
			if err != nil {
				s.logger.Error("failed to delete idle session", "session_id", id, "error", err)
				result.Errors = append(result.Errors, err)
				failed[id] = true
				continue
			}
			result.SessionsDeleted++
			progressed = true
		}

		if !progressed || len(ids) < cleanupBatchSize+len(failed) {
			break
		}
	}

	s.logger.Info("cleanup completed",
		"sessions_deleted", result.SessionsDeleted,
		"objects_deleted", result.ObjectsDeleted,
		"errors", len(result.Errors),
	)

	return result, nil
}

// Running reports whether a cleanup pass is in progress.
func (s *CleanupService) Running() bool {
	return s.running.Load()
}

// RunScheduledCleanup runs the cleanup task as a background goroutine.
// It runs immediately on start and then at the specified interval.
func (s *CleanupService) RunScheduledCleanup(ctx context.Context, maxIdle, interval time.Duration) {
	s.logger.Info("starting scheduled cleanup",
		"max_idle", maxIdle.String(),
		"interval", interval.String(),
	)

	if _, err := s.CleanupIdleSessions(ctx, maxIdle); err != nil {
		s.logger.Error("initial cleanup failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduled cleanup stopped")
			return
		case <-ticker.C:
			if _, err := s.CleanupIdleSessions(ctx, maxIdle); err != nil {
				s.logger.Error("scheduled cleanup failed", "error", err)
			}
		}
	}
}

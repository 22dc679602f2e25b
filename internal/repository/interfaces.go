// Package repository defines repository interfaces for data access.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmylchreest/resumeai/internal/models"
)

// SessionRepository defines methods for session data access.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, id string) error
	// ListIdleBefore returns the IDs of sessions not seen since cutoff.
	ListIdleBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	// Delete removes a session together with its key/value entries and
	// snapshot records.
	Delete(ctx context.Context, id string) error
}

// KVRepository is the per-session key/value store. Writes replace the whole
// value; concurrent writers race and the last write wins.
type KVRepository interface {
	Get(ctx context.Context, sessionID, key string) (value string, found bool, err error)
	Put(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
	Keys(ctx context.Context, sessionID string) ([]string, error)
}

// SnapshotRepository indexes resume snapshots kept in object storage.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.Snapshot) error
	GetByID(ctx context.Context, sessionID, id string) (*models.Snapshot, error)
	ListBySessionID(ctx context.Context, sessionID string, limit int) ([]*models.Snapshot, error)
	ListObjectKeysBySessionID(ctx context.Context, sessionID string) ([]string, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Session  SessionRepository
	KV       KVRepository
	Snapshot SnapshotRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Session:  NewSQLiteSessionRepository(db),
		KV:       NewSQLiteKVRepository(db),
		Snapshot: NewSQLiteSnapshotRepository(db),
	}
}

// timeLayout has fixed-width fractional seconds so stored timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

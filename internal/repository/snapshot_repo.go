package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/resumeai/internal/models"
)

// SQLiteSnapshotRepository implements SnapshotRepository for SQLite/libsql.
type SQLiteSnapshotRepository struct {
	db *sql.DB
}

// NewSQLiteSnapshotRepository creates a new SQLite snapshot repository.
func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

// Create records a snapshot, assigning a ULID when ID is empty.
func (r *SQLiteSnapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	now := time.Now().UTC()
	if snapshot.ID == "" {
		snapshot.ID = ulid.Make().String()
	}
	snapshot.CreatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, snapshot.SessionID, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resume_snapshots (id, session_id, label, object_key, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		snapshot.ID,
		snapshot.SessionID,
		snapshot.Label,
		snapshot.ObjectKey,
		snapshot.SizeBytes,
		formatTime(now),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a snapshot owned by sessionID, or nil.
func (r *SQLiteSnapshotRepository) GetByID(ctx context.Context, sessionID, id string) (*models.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, label, object_key, size_bytes, created_at
		FROM resume_snapshots
		WHERE session_id = ? AND id = ?
	`, sessionID, id)

	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// ListBySessionID returns the newest snapshots first.
func (r *SQLiteSnapshotRepository) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]*models.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, label, object_key, size_bytes, created_at
		FROM resume_snapshots
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ListObjectKeysBySessionID returns every object key recorded for a session.
func (r *SQLiteSnapshotRepository) ListObjectKeysBySessionID(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT object_key FROM resume_snapshots WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var s models.Snapshot
	var createdAt string
	if err := row.Scan(&s.ID, &s.SessionID, &s.Label, &s.ObjectKey, &s.SizeBytes, &createdAt); err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/resumeai/internal/models"
)

// SQLiteSessionRepository implements SessionRepository for SQLite/libsql.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create inserts a session, assigning a ULID when ID is empty.
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = ulid.Make().String()
	}
	session.CreatedAt = now
	session.LastSeenAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, last_seen_at) VALUES (?, ?, ?)
	`, session.ID, formatTime(now), formatTime(now))
	return err
}

// GetByID returns the session or nil when it does not exist.
func (r *SQLiteSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	var createdAt, lastSeenAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, last_seen_at FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &createdAt, &lastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	s.LastSeenAt = parseTime(lastSeenAt)
	return &s, nil
}

// Touch records activity, creating the row if it is missing.
func (r *SQLiteSessionRepository) Touch(ctx context.Context, id string) error {
	return touchSession(ctx, r.db, id, time.Now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func touchSession(ctx context.Context, db execer, id string, now time.Time) error {
	ts := formatTime(now)
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, last_seen_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen_at = excluded.last_seen_at
	`, id, ts, ts)
	return err
}

// ListIdleBefore returns up to limit session IDs not seen since cutoff, oldest first.
func (r *SQLiteSessionRepository) ListIdleBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM sessions
		WHERE last_seen_at < ?
		ORDER BY last_seen_at
		LIMIT ?
	`, formatTime(cutoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a session with its key/value entries and snapshot records.
// Rows are removed explicitly because foreign key enforcement is per connection.
func (r *SQLiteSessionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM kv_store WHERE session_id = ?`,
		`DELETE FROM resume_snapshots WHERE session_id = ?`,
		`DELETE FROM sessions WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// SQLiteKVRepository implements KVRepository for SQLite/libsql.
type SQLiteKVRepository struct {
	db *sql.DB
}

// NewSQLiteKVRepository creates a new SQLite key/value repository.
func NewSQLiteKVRepository(db *sql.DB) *SQLiteKVRepository {
	return &SQLiteKVRepository{db: db}
}

// Get returns the stored value and whether the key exists.
func (r *SQLiteKVRepository) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE session_id = ? AND key = ?
	`, sessionID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put replaces the value stored under key and marks the session as active.
func (r *SQLiteKVRepository) Put(ctx context.Context, sessionID, key, value string) error {
	now := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, sessionID, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_store (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, sessionID, key, value, formatTime(now)); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the given keys. Missing keys are ignored.
func (r *SQLiteKVRepository) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, sessionID)
	for _, k := range keys {
		args = append(args, k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_store WHERE session_id = ? AND key IN (`+placeholders+`)`,
		args...,
	)
	return err
}

// Keys lists the keys present for a session in lexical order.
func (r *SQLiteKVRepository) Keys(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key FROM kv_store WHERE session_id = ? ORDER BY key
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

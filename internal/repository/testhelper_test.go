package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jmylchreest/resumeai/internal/database/migrations"
	_ "github.com/tursodatabase/go-libsql"
)

// setupTestDB creates an in-memory database with migrations applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) (*Repositories, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db), db
}

// setLastSeen backdates a session's activity timestamp.
func setLastSeen(t *testing.T, db *sql.DB, id string, at time.Time) {
	t.Helper()
	if _, err := db.Exec(`UPDATE sessions SET last_seen_at = ? WHERE id = ?`, formatTime(at), id); err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}
}

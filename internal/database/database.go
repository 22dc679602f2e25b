// Package database opens the libsql connection that backs session storage.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tursodatabase/go-libsql"

	"github.com/jmylchreest/resumeai/internal/database/migrations"
)

// Options selects the database to open.
type Options struct {
	// DSN is a local file ("file:resumeai.db"), ":memory:" or a libsql
	// server URL ("http://127.0.0.1:8080").
	DSN string
	// TursoURL and TursoAuthToken, when both set, open DSN as an embedded
	// replica synced with the remote database.
	TursoURL       string
	TursoAuthToken string
}

// New creates a new database connection using libsql.
func New(opts Options) (*sql.DB, error) {
	var db *sql.DB

	if opts.TursoURL != "" && opts.TursoAuthToken != "" {
		dbPath := strings.TrimPrefix(opts.DSN, "file:")
		dbPath = strings.Split(dbPath, "?")[0]

		connector, err := libsql.NewEmbeddedReplicaConnector(dbPath, opts.TursoURL,
			libsql.WithAuthToken(opts.TursoAuthToken),
			libsql.WithReadYourWrites(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Turso connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		var err error
		db, err = sql.Open("libsql", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate runs pending schema migrations.
func Migrate(db *sql.DB, logger *slog.Logger) error {
	return migrations.Run(db, logger)
}

// SchemaStatus reports the applied schema version and pending migrations.
func SchemaStatus(ctx context.Context, db *sql.DB) (migrations.Status, error) {
	return migrations.CurrentStatus(ctx, db)
}

// Package migrations holds the schema history of the session store.
//
// Each migration lives in its own file named YYYYMMDD-HHmmss-description.go
// and registers itself from init. Applied versions are recorded in
// schema_migrations so every migration runs once.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Migration is one schema step.
type Migration struct {
	Timestamp   string // YYYYMMDD-HHmmss, orders the history
	Description string
	Up          []string
}

// Status describes the schema of an open database.
type Status struct {
	Current string   // latest applied version, "" on an empty database
	Applied int      // number of applied migrations
	Pending []string // registered versions not yet applied, oldest first
}

// UpToDate reports whether every registered migration is applied.
func (s Status) UpToDate() bool {
	return len(s.Pending) == 0
}

var (
	registry      []Migration
	timestampExpr = regexp.MustCompile(`^\d{8}-\d{6}$`)
)

const trackingTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Register adds a migration to the history. A malformed or duplicate
// timestamp is a programming error and panics at init.
func Register(m Migration) {
	if !timestampExpr.MatchString(m.Timestamp) {
		panic(fmt.Sprintf("migrations: bad timestamp %q", m.Timestamp))
	}
	i, found := slices.BinarySearchFunc(registry, m.Timestamp, func(r Migration, ts string) int {
		return strings.Compare(r.Timestamp, ts)
	})
	if found {
		panic(fmt.Sprintf("migrations: duplicate timestamp %q", m.Timestamp))
	}
	registry = slices.Insert(registry, i, m)
}

// Run applies pending migrations in order, each in its own transaction.
func Run(db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, trackingTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, m := range registry {
		if applied[m.Timestamp] {
			continue
		}
		start := time.Now()
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %s (%s) failed: %w", m.Timestamp, m.Description, err)
		}
		logger.Info("applied migration",
			"version", m.Timestamp,
			"description", m.Description,
			"duration", time.Since(start),
		)
	}
	return nil
}

// CurrentStatus reports the applied and pending migrations. A database that
// has never been migrated reports everything as pending.
func CurrentStatus(ctx context.Context, db *sql.DB) (Status, error) {
	var st Status
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return st, err
	}
	st.Applied = len(applied)
	for v := range applied {
		st.Current = max(st.Current, v)
	}
	for _, m := range registry {
		if !applied[m.Timestamp] {
			st.Pending = append(st.Pending, m.Timestamp)
		}
	}
	return st, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		if isMissingTable(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w\n%s", err, stmt)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Timestamp, m.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}

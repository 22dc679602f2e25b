// Package handlers contains the Huma operation handlers of the API.
package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/database/migrations"
	"github.com/jmylchreest/resumeai/internal/http/mw"
	"github.com/jmylchreest/resumeai/internal/version"
)

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Get().Short()
	return out, nil
}

// LivezOutput represents the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez reports that the process is running.
func Livez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// SchemaChecker reports the migration state of the database.
type SchemaChecker func(ctx context.Context) (migrations.Status, error)

// ReadyzHandler reports whether the database is reachable and migrated.
type ReadyzHandler struct {
	db     DBPinger
	schema SchemaChecker
}

// NewReadyzHandler creates a readiness handler. A nil db is always ready;
// a nil schema skips the migration check.
func NewReadyzHandler(db DBPinger, schema SchemaChecker) *ReadyzHandler {
	return &ReadyzHandler{db: db, schema: schema}
}

// ReadyzOutput represents the readiness probe response.
type ReadyzOutput struct {
	Body struct {
		Status        string `json:"status"`
		SchemaVersion string `json:"schema_version,omitempty"`
	}
}

// Readyz checks the database connection and that no migrations are pending.
func (h *ReadyzHandler) Readyz(ctx context.Context, input *struct{}) (*ReadyzOutput, error) {
	out := &ReadyzOutput{}
	out.Body.Status = "ok"
	if h.db == nil {
		return out, nil
	}
	if err := h.db.PingContext(ctx); err != nil {
		return nil, huma.Error503ServiceUnavailable("database unavailable")
	}
	if h.schema == nil {
		return out, nil
	}
	st, err := h.schema(ctx)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("schema status unavailable")
	}
	if !st.UpToDate() {
		return nil, huma.Error503ServiceUnavailable(fmt.Sprintf("%d migrations pending", len(st.Pending)))
	}
	out.Body.SchemaVersion = st.Current
	return out, nil
}

// requireSession returns the authenticated session ID.
func requireSession(ctx context.Context) (string, error) {
	sessionID := mw.GetSessionID(ctx)
	if sessionID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return sessionID, nil
}

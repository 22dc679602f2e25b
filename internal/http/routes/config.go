// Package routes provides shared route registration for the resumeai API.
// The server and the OpenAPI generator register the same definitions, so the
// published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/http/mw"
	"github.com/jmylchreest/resumeai/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("resumeai API", version.Get().Short())
	cfg.Info.Description = "AI assistance for a resume builder: provider credentials, content suggestions with model fallback, and safely rendered resume templates."

	// No $schema field in responses.
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Session token from `POST /api/v1/sessions`, sent as `Authorization: Bearer <token>`.",
		},
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Sessions", Description: "Anonymous session lifecycle", Extensions: map[string]any{"x-displayName": "Sessions"}},
		{Name: "AI Providers", Description: "Supported providers and their models", Extensions: map[string]any{"x-displayName": "AI Providers"}},
		{Name: "AI Credentials", Description: "Per-session provider key and current model", Extensions: map[string]any{"x-displayName": "AI Credentials"}},
		{Name: "AI Generation", Description: "Content suggestions and template generation", Extensions: map[string]any{"x-displayName": "AI Generation"}},
		{Name: "Templates", Description: "Template validation, storage and rendering", Extensions: map[string]any{"x-displayName": "Templates"}},
		{Name: "Resume", Description: "Stored resume, import and export", Extensions: map[string]any{"x-displayName": "Resume"}},
		{Name: "Snapshots", Description: "Resume snapshots in object storage", Extensions: map[string]any{"x-displayName": "Snapshots"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}

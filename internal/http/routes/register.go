package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub
// implementations for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// =========================================================================
	// Public Routes (no auth required)
	// =========================================================================

	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probes
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)

	mw.PublicPost(api, "/api/v1/sessions", h.Session.CreateSession,
		mw.WithTags("Sessions"),
		mw.WithSummary("Create session"),
		mw.WithDescription("Starts an anonymous session and returns its bearer token."),
		mw.WithStatus(http.StatusCreated),
		mw.WithOperationID("createSession"))

	mw.PublicGet(api, "/api/v1/ai/providers", h.AI.ListProviders,
		mw.WithTags("AI Providers"),
		mw.WithSummary("List AI providers"),
		mw.WithOperationID("listProviders"))

	mw.PublicPost(api, "/api/v1/templates/validate", h.Template.ValidateTemplate,
		mw.WithTags("Templates"),
		mw.WithSummary("Validate template code"),
		mw.WithDescription("Checks template source against the allow-list without storing it."),
		mw.WithOperationID("validateTemplate"))
	mw.PublicGet(api, "/api/v1/templates/builtin", h.Template.ListBuiltinTemplates,
		mw.WithTags("Templates"),
		mw.WithSummary("List builtin templates"),
		mw.WithOperationID("listBuiltinTemplates"))

	// =========================================================================
	// Protected Routes (require a session token)
	// =========================================================================

	// --- Sessions ---
	mw.ProtectedPost(api, "/api/v1/sessions/refresh", h.Session.RefreshSession,
		mw.WithTags("Sessions"),
		mw.WithSummary("Refresh session token"),
		mw.WithOperationID("refreshSession"))
	mw.ProtectedDelete(api, "/api/v1/sessions/current", h.Session.DeleteSession,
		mw.WithTags("Sessions"),
		mw.WithSummary("Delete session"),
		mw.WithDescription("Deletes the session with its credential, templates, resume and snapshots."),
		mw.WithStatus(http.StatusNoContent),
		mw.WithOperationID("deleteSession"))

	// --- AI ---
	mw.ProtectedGet(api, "/api/v1/ai/models/{provider}", h.AI.ListModels,
		mw.WithTags("AI Providers"),
		mw.WithSummary("List provider models"),
		mw.WithDescription("Queries the provider live when the session's key belongs to it; otherwise returns the built-in list."),
		mw.WithOperationID("listModels"))
	mw.ProtectedGet(api, "/api/v1/ai/credentials", h.AI.GetCredential,
		mw.WithTags("AI Credentials"),
		mw.WithSummary("Get AI credential"),
		mw.WithOperationID("getCredential"))
	mw.ProtectedPut(api, "/api/v1/ai/credentials", h.AI.PutCredential,
		mw.WithTags("AI Credentials"),
		mw.WithSummary("Set AI credential"),
		mw.WithOperationID("putCredential"))
	mw.ProtectedDelete(api, "/api/v1/ai/credentials", h.AI.DeleteCredential,
		mw.WithTags("AI Credentials"),
		mw.WithSummary("Delete AI credential"),
		mw.WithStatus(http.StatusNoContent),
		mw.WithOperationID("deleteCredential"))
	mw.ProtectedPut(api, "/api/v1/ai/credentials/model", h.AI.UpdateModel,
		mw.WithTags("AI Credentials"),
		mw.WithSummary("Switch current model"),
		mw.WithOperationID("updateModel"))
	mw.ProtectedPost(api, "/api/v1/ai/credentials/verify", h.AI.VerifyCredential,
		mw.WithTags("AI Credentials"),
		mw.WithSummary("Verify AI credential"),
		mw.WithOperationID("verifyCredential"))
	mw.ProtectedPost(api, "/api/v1/ai/suggestions", h.AI.Suggestions,
		mw.WithTags("AI Generation"),
		mw.WithSummary("Generate content suggestions"),
		mw.WithDescription("Tries the current model and then the provider's fallback models until one answers."),
		mw.WithOperationID("generateSuggestions"))
	mw.ProtectedPost(api, "/api/v1/templates/generate", h.Template.GenerateTemplate,
		mw.WithTags("AI Generation"),
		mw.WithSummary("Generate template"),
		mw.WithDescription("Generated code is returned only when it passes template validation. Failures are reported in the body."),
		mw.WithOperationID("generateTemplate"))

	// --- Templates ---
	mw.ProtectedGet(api, "/api/v1/templates", h.Template.ListTemplates,
		mw.WithTags("Templates"),
		mw.WithSummary("List custom templates"),
		mw.WithOperationID("listTemplates"))
	mw.ProtectedPost(api, "/api/v1/templates", h.Template.AddTemplate,
		mw.WithTags("Templates"),
		mw.WithSummary("Add custom template"),
		mw.WithStatus(http.StatusCreated),
		mw.WithOperationID("addTemplate"))
	mw.ProtectedGet(api, "/api/v1/templates/{id}", h.Template.GetTemplate,
		mw.WithTags("Templates"),
		mw.WithSummary("Get custom template"),
		mw.WithOperationID("getTemplate"))
	mw.ProtectedDelete(api, "/api/v1/templates/{id}", h.Template.DeleteTemplate,
		mw.WithTags("Templates"),
		mw.WithSummary("Delete custom template"),
		mw.WithStatus(http.StatusNoContent),
		mw.WithOperationID("deleteTemplate"))
	mw.ProtectedPost(api, "/api/v1/templates/{id}/render", h.Template.RenderTemplate,
		mw.WithTags("Templates"),
		mw.WithSummary("Render template"),
		mw.WithDescription("Renders a builtin or custom template to HTML against the given or stored resume."),
		mw.WithOperationID("renderTemplate"))

	// --- Resume ---
	mw.ProtectedGet(api, "/api/v1/resume", h.Resume.GetResume,
		mw.WithTags("Resume"),
		mw.WithSummary("Get resume"),
		mw.WithOperationID("getResume"))
	mw.ProtectedPut(api, "/api/v1/resume", h.Resume.PutResume,
		mw.WithTags("Resume"),
		mw.WithSummary("Save resume"),
		mw.WithOperationID("putResume"))
	mw.ProtectedGet(api, "/api/v1/resume/export", h.Resume.ExportResume,
		mw.WithTags("Resume"),
		mw.WithSummary("Export resume"),
		mw.WithOperationID("exportResume"))
	mw.ProtectedPost(api, "/api/v1/resume/import", h.Resume.ImportResume,
		mw.WithTags("Resume"),
		mw.WithSummary("Import resume"),
		mw.WithOperationID("importResume"))

	// --- Snapshots ---
	mw.ProtectedPost(api, "/api/v1/resume/snapshots", h.Resume.CreateSnapshot,
		mw.WithTags("Snapshots"),
		mw.WithSummary("Create snapshot"),
		mw.WithStatus(http.StatusCreated),
		mw.WithOperationID("createSnapshot"))
	mw.ProtectedGet(api, "/api/v1/resume/snapshots", h.Resume.ListSnapshots,
		mw.WithTags("Snapshots"),
		mw.WithSummary("List snapshots"),
		mw.WithOperationID("listSnapshots"))
	mw.ProtectedGet(api, "/api/v1/resume/snapshots/{id}", h.Resume.GetSnapshot,
		mw.WithTags("Snapshots"),
		mw.WithSummary("Get snapshot"),
		mw.WithOperationID("getSnapshot"))
	mw.ProtectedPost(api, "/api/v1/resume/snapshots/{id}/restore", h.Resume.RestoreSnapshot,
		mw.WithTags("Snapshots"),
		mw.WithSummary("Restore snapshot"),
		mw.WithOperationID("restoreSnapshot"))
}

// Package models defines the domain models for the application.
package models

import (
	"time"
)

// Session keys. Each session owns an independent namespace of these keys.
const (
	KeyAPIKey          = "aiApiKey"
	KeyService         = "aiService"
	KeyModel           = "aiModel"
	KeyCustomTemplates = "customTemplates"
	KeyResumeData      = "resumeData"
)

// Session is a browser identity that owns a key/value namespace.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Credential is the user-supplied provider key for a session.
// An empty Provider and APIKey means no credential is configured.
type Credential struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"-"`
	CurrentModel string `json:"current_model,omitempty"`
}

// IsConfigured reports whether both the key and the provider are present.
func (c Credential) IsConfigured() bool {
	return c.APIKey != "" && c.Provider != ""
}

// Action selects the kind of content assistance requested.
type Action string

const (
	ActionSuggest  Action = "suggest"
	ActionOptimize Action = "optimize"
	ActionGrammar  Action = "grammar"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionSuggest, ActionOptimize, ActionGrammar:
		return true
	}
	return false
}

// GenerationRequest asks for alternative phrasings of a resume field.
type GenerationRequest struct {
	Prompt  string `json:"prompt"`
	Field   string `json:"field"`
	Context string `json:"context,omitempty"`
	Action  Action `json:"action"`
}

// TemplatePreferences describe the template a user wants generated.
type TemplatePreferences struct {
	Style                  string   `json:"style,omitempty"`
	ColorScheme            string   `json:"colorScheme,omitempty"`
	Layout                 string   `json:"layout,omitempty"`
	FontFamily             string   `json:"fontFamily,omitempty"`
	Sections               []string `json:"sections,omitempty"`
	AdditionalInstructions string   `json:"additionalInstructions,omitempty"`
}

// CustomTemplate is a validated template stored in a session.
// Code always passed the template validator before it was persisted.
type CustomTemplate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Code        string              `json:"code"`
	Preferences TemplatePreferences `json:"preferences"`
	CreatedAt   time.Time           `json:"createdAt"`
	IsCustom    bool                `json:"isCustom"`
}

// Snapshot records a resume copy stored in object storage.
type Snapshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	Label     string    `json:"label,omitempty"`
	ObjectKey string    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

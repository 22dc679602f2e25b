// Package mw contains HTTP middleware for the resumeai API.
package mw

import (
	"context"
	"strings"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// SessionIDKey is the context key for the authenticated session ID.
	SessionIDKey ContextKey = "session_id"
)

// SessionAuthenticator resolves a bearer token to a live session ID.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// WithSessionID returns a context carrying the authenticated session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionID returns the authenticated session ID, or "" outside a
// protected operation.
func GetSessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value.
// A bare token without the scheme is accepted.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

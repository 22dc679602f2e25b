package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/resumeai/internal/service"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// SessionTokenBody is returned whenever a token is issued.
type SessionTokenBody struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token" doc:"Bearer token for protected endpoints"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionTokenOutput wraps a session token response.
type SessionTokenOutput struct {
	Body SessionTokenBody
}

func tokenOutput(tok *service.SessionToken) *SessionTokenOutput {
	return &SessionTokenOutput{Body: SessionTokenBody{
		SessionID: tok.SessionID,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	}}
}

// CreateSession starts an anonymous session.
func (h *SessionHandler) CreateSession(ctx context.Context, input *struct{}) (*SessionTokenOutput, error) {
	tok, err := h.sessions.Create(ctx)
	if err != nil {
		return nil, toHumaError(h.logger, "create session", err)
	}
	return tokenOutput(tok), nil
}

// RefreshSession issues a fresh token for the current session.
func (h *SessionHandler) RefreshSession(ctx context.Context, input *struct{}) (*SessionTokenOutput, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := h.sessions.Refresh(ctx, sessionID)
	if err != nil {
		return nil, toHumaError(h.logger, "refresh session", err)
	}
	return tokenOutput(tok), nil
}

// DeleteSession removes the current session and everything it owns.
func (h *SessionHandler) DeleteSession(ctx context.Context, input *struct{}) (*struct{}, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Delete(ctx, sessionID); err != nil {
		return nil, toHumaError(h.logger, "delete session", err)
	}
	return nil, nil
}

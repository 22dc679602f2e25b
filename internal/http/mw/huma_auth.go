package mw

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/auth"
	"github.com/jmylchreest/resumeai/internal/logging"
	"github.com/jmylchreest/resumeai/internal/service"
)

// SecurityScheme is the name of the security scheme used in OpenAPI.
const SecurityScheme = "bearerAuth"

// HumaAuthConfig holds dependencies for the Huma auth middleware.
type HumaAuthConfig struct {
	Sessions SessionAuthenticator
	Logger   *slog.Logger
}

// HumaAuth returns a Huma middleware that authenticates operations declaring
// the bearer security scheme. Public operations pass through untouched.
func HumaAuth(api huma.API, cfg HumaAuthConfig) func(ctx huma.Context, next func(huma.Context)) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil || !operationRequiresAuth(op) {
			next(ctx)
			return
		}

		token := bearerToken(ctx.Header("Authorization"))
		if token == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing authorization header")
			return
		}

		stdCtx := ctx.Context()
		sessionID, err := cfg.Sessions.Authenticate(stdCtx, token)
		if err != nil {
			if !isAuthFailure(err) {
				logger.Error("session lookup failed", "error", err)
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "failed to authenticate session")
				return
			}
			logger.Debug("auth validation failed", "error", err)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, authMessage(err))
			return
		}

		newCtx := WithSessionID(stdCtx, sessionID)
		newCtx = logging.WithSessionID(newCtx, sessionID)
		next(huma.WithContext(ctx, newCtx))
	}
}

// operationRequiresAuth checks if the operation has bearerAuth in its security requirements.
func operationRequiresAuth(op *huma.Operation) bool {
	for _, secReq := range op.Security {
		if _, ok := secReq[SecurityScheme]; ok {
			return true
		}
	}
	return false
}

// isAuthFailure separates client credential problems from store failures.
func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrTokenExpired) ||
		errors.Is(err, auth.ErrMissingClaims) ||
		errors.Is(err, service.ErrSessionNotFound)
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "session token expired"
	case errors.Is(err, service.ErrSessionNotFound):
		return "session no longer exists"
	default:
		return "invalid token"
	}
}

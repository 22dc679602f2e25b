package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/jmylchreest/resumeai/internal/auth"
)

// TokenVerifier checks a session token signature without touching storage.
type TokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

// RateLimitConfig holds configuration for rate limiting generation routes.
type RateLimitConfig struct {
	// SessionRequestsPerMinute limits each session on matching paths.
	// A value of 0 disables the limit.
	SessionRequestsPerMinute int
	// Patterns selects the paths the session limit applies to.
	Patterns []string
}

// RateLimitBySession returns a middleware that rate limits matching paths
// per session. The session comes from the bearer token signature only; a
// request without a valid token is keyed by IP and left for the auth layer
// to reject.
func RateLimitBySession(cfg RateLimitConfig, verifier TokenVerifier) func(http.Handler) http.Handler {
	if cfg.SessionRequestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := httprate.NewRateLimiter(
		cfg.SessionRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if sessionID := sessionFromRequest(r, verifier); sessionID != "" {
				return "session:" + sessionID, nil
			}
			return httprate.KeyByIP(r)
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesAny(r.URL.Path, cfg.Patterns) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP returns a middleware that rate limits by IP address.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}

func sessionFromRequest(r *http.Request, verifier TokenVerifier) string {
	if verifier == nil {
		return ""
	}
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return ""
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		return ""
	}
	return claims.SessionID()
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

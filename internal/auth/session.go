// Package auth issues and verifies the bearer tokens that identify a session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrMissingClaims = errors.New("missing required claims")
)

// Issuer is the iss claim of every session token.
const Issuer = "resumeai"

// SessionClaims are the claims carried by a session token. The subject is the
// session ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session the token belongs to.
func (c *SessionClaims) SessionID() string {
	return c.Subject
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. Tokens expire after expiry.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the lifetime of issued tokens.
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}

// Issue signs a token for sessionID and returns it with its expiry time.
func (m *TokenManager) Issue(sessionID string) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, ErrMissingClaims
	}
	now := m.now()
	expiresAt := now.Add(m.expiry)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   sessionID,
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, issuer and expiry of a token and returns its claims.
func (m *TokenManager) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := ulid.ParseStrict(claims.Subject); err != nil {
		return nil, ErrMissingClaims
	}

	return claims, nil
}

// Package logging builds the process logger on slog-logfilter.
//
// Output is JSON unless LOG_FORMAT=text or stdout is a terminal. LOG_LEVEL
// selects the base level. Request and session ids stored in the context are
// exposed to dynamic filters, so a single session can be traced at debug
// level without raising the global level.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	logfilter "github.com/jmylchreest/slog-logfilter"
)

// ContextKey is a type for context keys used in logging.
type ContextKey string

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey ContextKey = "log_request_id"
	// SessionIDKey is the context key for the browser session ID.
	SessionIDKey ContextKey = "log_session_id"
)

// WithRequestID adds a request ID to the context for logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithSessionID adds a session ID to the context for logging.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetSessionID extracts the session ID from context.
func GetSessionID(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// FromContext returns a logger carrying the request and session IDs found in ctx.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if ctx == nil {
		return logger
	}

	var attrs []any
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	if sessionID := GetSessionID(ctx); sessionID != "" {
		attrs = append(attrs, "session_id", sessionID)
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrs...)
}

// registerContextExtractors exposes context values to filter rules.
func registerContextExtractors() {
	for name, key := range map[string]ContextKey{
		"request_id": RequestIDKey,
		"session_id": SessionIDKey,
	} {
		key := key
		logfilter.RegisterContextExtractor(name, func(ctx context.Context) (string, bool) {
			s := stringValue(ctx, key)
			return s, s != ""
		})
	}
}

// New creates a configured logger.
func New() *slog.Logger {
	logFormat := os.Getenv("LOG_FORMAT")
	format := "json"
	if logFormat == "text" || (logFormat == "" && isatty(os.Stdout)) {
		format = "text"
	}

	registerContextExtractors()

	return logfilter.New(
		logfilter.WithLevel(parseLogLevel(os.Getenv("LOG_LEVEL"))),
		logfilter.WithFormat(format),
		logfilter.WithOutput(os.Stdout),
		logfilter.WithSource(true),
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault creates a new logger and sets it as the default slog logger.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// SetLevel changes the global log level at runtime.
func SetLevel(level slog.Level) {
	logfilter.SetLevel(level)
}

// GetLevel returns the current global log level.
func GetLevel() slog.Level {
	return logfilter.GetLevel()
}

// SetFilters replaces all log filters.
func SetFilters(filters []logfilter.LogFilter) {
	logfilter.SetFilters(filters)
}

// GetFilters returns a copy of the current filters.
func GetFilters() []logfilter.LogFilter {
	return logfilter.GetFilters()
}

// Discard returns a logger that drops everything. Used by tests and tools.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func isatty(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

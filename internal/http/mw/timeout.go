package mw

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
)

// panicWithStack captures a panic value along with its stack trace.
type panicWithStack struct {
	value any
	stack []byte
}

// TimeoutConfig defines timeout behavior for different path patterns.
type TimeoutConfig struct {
	// Default timeout for most endpoints
	Default time.Duration
	// Extended timeout for provider calls
	Extended time.Duration
	// Patterns that get the extended timeout (e.g. "/ai/suggestions")
	ExtendedPatterns []string
}

// For returns the timeout that applies to path.
func (c TimeoutConfig) For(path string) time.Duration {
	if matchesAny(path, c.ExtendedPatterns) {
		return c.Extended
	}
	return c.Default
}

// Timeout returns a middleware that bounds each request with a deadline.
// Generation routes get the extended deadline since a single request may
// walk several models.
func Timeout(cfg TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.For(r.URL.Path))
			defer cancel()

			done := make(chan struct{})
			panicChan := make(chan *panicWithStack, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- &panicWithStack{
							value: p,
							stack: debug.Stack(),
						}
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicChan:
				// Re-panic on this goroutine so the recoverer sees it.
				panic(fmt.Sprintf("%v\n\nOriginal stack trace:\n%s", p.value, p.stack))
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					w.Header().Set("Content-Type", "application/problem+json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"title":"Gateway Timeout","status":504,"detail":"request timed out"}`))
					return
				}
			}
		})
	}
}

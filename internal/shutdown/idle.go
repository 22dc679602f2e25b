// Package shutdown stops an idle server so the platform can scale it to zero.
package shutdown

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// BusyFunc reports whether background work is in progress. A busy server is
// never considered idle.
type BusyFunc func() bool

// Config holds configuration for the idle monitor.
type Config struct {
	Timeout     time.Duration // 0 disables the monitor
	Logger      *slog.Logger
	IgnorePaths []string // path prefixes that don't count as activity, e.g. probes
	Busy        BusyFunc
}

// IdleMonitor tracks in-flight requests and signals once the server has seen
// no requests and no background work for the configured timeout.
type IdleMonitor struct {
	timeout time.Duration
	logger  *slog.Logger
	ignore  []string
	busy    BusyFunc
	now     func() time.Time

	active   atomic.Int64
	lastSeen atomic.Int64 // unix nanoseconds

	idle     chan struct{}
	idleOnce sync.Once
}

// NewIdleMonitor creates an idle monitor.
func NewIdleMonitor(cfg Config) *IdleMonitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &IdleMonitor{
		timeout: cfg.Timeout,
		logger:  logger.With("component", "idle"),
		ignore:  cfg.IgnorePaths,
		busy:    cfg.Busy,
		now:     time.Now,
		idle:    make(chan struct{}),
	}
	m.touch()
	return m
}

// Enabled reports whether a timeout is configured.
func (m *IdleMonitor) Enabled() bool {
	return m.timeout > 0
}

// Idle returns a channel that is closed when the idle timeout is reached.
// It never closes when the monitor is disabled.
func (m *IdleMonitor) Idle() <-chan struct{} {
	return m.idle
}

// Middleware counts requests as activity, except those under IgnorePaths.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.ignored(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		m.active.Add(1)
		m.touch()
		defer func() {
			m.active.Add(-1)
			m.touch()
		}()
		next.ServeHTTP(w, r)
	})
}

// Run polls for idleness until ctx is cancelled or the timeout is reached.
func (m *IdleMonitor) Run(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Debug("idle monitoring disabled")
		return
	}
	m.logger.Info("idle monitoring started", "timeout", m.timeout, "ignore_paths", m.ignore)

	ticker := time.NewTicker(checkInterval(m.timeout))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if idleFor, expired := m.check(); expired {
				m.logger.Info("idle timeout reached, signaling shutdown",
					"idle_for", idleFor,
					"timeout", m.timeout,
				)
				m.idleOnce.Do(func() { close(m.idle) })
				return
			}
		}
	}
}

// check returns how long the server has been idle and whether that exceeds
// the timeout. Activity or background work resets the idle clock.
func (m *IdleMonitor) check() (time.Duration, bool) {
	active := m.active.Load()
	busy := m.busy != nil && m.busy()
	if active > 0 || busy {
		m.touch()
		m.logger.Debug("idle check", "active_requests", active, "background_busy", busy)
		return 0, false
	}
	idleFor := m.now().Sub(time.Unix(0, m.lastSeen.Load()))
	return idleFor, idleFor >= m.timeout
}

func (m *IdleMonitor) touch() {
	m.lastSeen.Store(m.now().UnixNano())
}

func (m *IdleMonitor) ignored(path string) bool {
	for _, prefix := range m.ignore {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// checkInterval polls six times per timeout, clamped to [5s, 30s].
func checkInterval(timeout time.Duration) time.Duration {
	return min(max(timeout/6, 5*time.Second), 30*time.Second)
}

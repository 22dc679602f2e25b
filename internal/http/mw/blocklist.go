package mw

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/resumeai/internal/config"
)

// IPBlocklist rejects requests from addresses listed in a JSON array of IPs
// and CIDR ranges kept in object storage. It fails open: while the list is
// missing or unreadable every request is allowed.
type IPBlocklist struct {
	loader *config.S3Loader
	logger *slog.Logger

	mu           sync.RWMutex
	blocked      map[string]bool
	blockedCIDRs []*net.IPNet
}

// BlocklistConfig holds configuration for the IP blocklist.
type BlocklistConfig struct {
	Client       config.ObjectGetter
	Bucket       string
	Key          string        // Default: "config/blocklist.json"
	CacheTTL     time.Duration // How often to check for updates (default: 5 min)
	ErrorBackoff time.Duration // How long to wait after an error (default: 1 min)
	Logger       *slog.Logger
}

// NewIPBlocklist creates a new IP blocklist middleware.
// The list is lazy-loaded on the first request.
func NewIPBlocklist(cfg BlocklistConfig) *IPBlocklist {
	if cfg.Key == "" {
		cfg.Key = "config/blocklist.json"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &IPBlocklist{
		loader: config.NewS3Loader(config.S3LoaderConfig{
			Client:       cfg.Client,
			Bucket:       cfg.Bucket,
			Key:          cfg.Key,
			CacheTTL:     cfg.CacheTTL,
			ErrorBackoff: cfg.ErrorBackoff,
			Logger:       cfg.Logger,
		}),
		logger:  cfg.Logger,
		blocked: make(map[string]bool),
	}
}

// Middleware returns the HTTP middleware handler.
func (b *IPBlocklist) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !b.loader.IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			if b.loader.NeedsRefresh() {
				go b.Refresh(context.WithoutCancel(r.Context()))
			}

			clientIP := extractIP(r)
			if b.isBlocked(clientIP) {
				b.logger.Warn("blocked request from blocklisted IP",
					"ip", clientIP,
					"path", r.URL.Path,
				)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Refresh fetches the list and swaps it in when it changed.
func (b *IPBlocklist) Refresh(ctx context.Context) {
	result, err := b.loader.Fetch(ctx)
	if err != nil || result == nil || result.NotChanged {
		return
	}

	var entries []string
	if err := json.Unmarshal(result.Data, &entries); err != nil {
		b.logger.Error("failed to parse blocklist JSON", "error", err)
		return
	}

	blocked, cidrs := b.parseEntries(entries)

	b.mu.Lock()
	b.blocked = blocked
	b.blockedCIDRs = cidrs
	b.mu.Unlock()

	b.logger.Info("blocklist refreshed",
		"exact_ips", len(blocked),
		"cidr_ranges", len(cidrs),
	)
}

func (b *IPBlocklist) parseEntries(entries []string) (map[string]bool, []*net.IPNet) {
	blocked := make(map[string]bool)
	var cidrs []*net.IPNet

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				b.logger.Warn("invalid CIDR in blocklist", "entry", entry, "error", err)
				continue
			}
			cidrs = append(cidrs, ipNet)
			continue
		}

		if ip := net.ParseIP(entry); ip != nil {
			blocked[ip.String()] = true
		} else {
			b.logger.Warn("invalid IP in blocklist", "entry", entry)
		}
	}
	return blocked, cidrs
}

// isBlocked checks if an IP is in the blocklist.
func (b *IPBlocklist) isBlocked(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.blocked[ip.String()] {
		return true
	}
	for _, cidr := range b.blockedCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP gets the client IP from the request.
// Assumes middleware.RealIP has already been applied.
func extractIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

package mw

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	logfilter "github.com/jmylchreest/slog-logfilter"

	"github.com/jmylchreest/resumeai/internal/config"
)

// LogFiltersConfig holds configuration for the log filters loader.
type LogFiltersConfig struct {
	Client       config.ObjectGetter
	Bucket       string
	Key          string        // Default: "config/logfilters.json"
	CacheTTL     time.Duration // How often to check for updates (default: 5 min)
	ErrorBackoff time.Duration // How long to wait after an error (default: 1 min)
	Logger       *slog.Logger

	// Apply installs parsed filters. Defaults to logfilter.SetFilters.
	Apply func([]logfilter.LogFilter)
}

// LogFiltersLoader polls object storage for dynamic log filter rules, for
// example a rule raising one session to debug level. Existing rules are kept
// when a fetch or parse fails.
type LogFiltersLoader struct {
	loader *config.S3Loader
	apply  func([]logfilter.LogFilter)
	logger *slog.Logger

	mu          sync.RWMutex
	filterCount int
	activeCount int

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewLogFiltersLoader creates a new log filters loader.
func NewLogFiltersLoader(cfg LogFiltersConfig) *LogFiltersLoader {
	if cfg.Key == "" {
		cfg.Key = "config/logfilters.json"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Apply == nil {
		cfg.Apply = logfilter.SetFilters
	}

	return &LogFiltersLoader{
		loader: config.NewS3Loader(config.S3LoaderConfig{
			Client:       cfg.Client,
			Bucket:       cfg.Bucket,
			Key:          cfg.Key,
			CacheTTL:     cfg.CacheTTL,
			ErrorBackoff: cfg.ErrorBackoff,
			Logger:       cfg.Logger,
		}),
		apply:  cfg.Apply,
		logger: cfg.Logger,
		stopCh: make(chan struct{}),
	}
}

// Start fetches the filters once and then polls until ctx ends or Stop is called.
func (l *LogFiltersLoader) Start(ctx context.Context) {
	if !l.loader.IsEnabled() {
		l.logger.Info("log filters loader disabled (no object storage)")
		return
	}

	l.refresh(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(l.loader.CacheTTL())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.refresh(ctx)
			case <-l.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	stats := l.loader.Stats()
	l.logger.Info("log filters loader started",
		"bucket", stats.Bucket,
		"key", stats.Key,
		"cache_ttl", stats.CacheTTL,
	)
}

// Stop stops the periodic refresh. Safe to call more than once.
func (l *LogFiltersLoader) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}

func (l *LogFiltersLoader) refresh(ctx context.Context) {
	result, err := l.loader.Fetch(ctx)
	if err != nil || result == nil || result.NotChanged {
		return
	}

	var filters []logfilter.LogFilter
	if err := json.Unmarshal(result.Data, &filters); err != nil {
		l.logger.Error("failed to parse log filters JSON", "error", err)
		return
	}

	l.apply(filters)

	active := 0
	for _, f := range filters {
		if f.IsActive() {
			active++
		}
	}

	l.mu.Lock()
	l.filterCount = len(filters)
	l.activeCount = active
	l.mu.Unlock()

	l.logger.Info("log filters loaded",
		"etag", result.Etag,
		"total_filters", len(filters),
		"active_filters", active,
	)
}

// LogFiltersStats contains statistics about the log filters loader.
type LogFiltersStats struct {
	config.S3LoaderStats
	FilterCount int `json:"filter_count"`
	ActiveCount int `json:"active_count"`
}

// Stats returns current loader statistics.
func (l *LogFiltersLoader) Stats() LogFiltersStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LogFiltersStats{
		S3LoaderStats: l.loader.Stats(),
		FilterCount:   l.filterCount,
		ActiveCount:   l.activeCount,
	}
}

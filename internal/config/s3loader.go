package config

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the subset of the S3 client used by S3Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3LoaderConfig holds common configuration for S3-backed config loaders.
type S3LoaderConfig struct {
	Client       ObjectGetter
	Bucket       string
	Key          string
	CacheTTL     time.Duration // How often to check for updates (default: 5 min)
	ErrorBackoff time.Duration // How long to wait after an error (default: 1 min)
	Logger       *slog.Logger
}

// S3LoadResult contains the result of an S3 config fetch.
type S3LoadResult struct {
	Data       []byte    // Raw JSON document
	Etag       string    // New ETag
	FetchTime  time.Time // When the data was fetched
	NotChanged bool      // True if data hasn't changed (304)
}

// S3Loader fetches a JSON document from object storage with etag caching and
// error backoff. Loaders for specific documents embed or wrap it.
type S3Loader struct {
	client ObjectGetter
	bucket string
	key    string

	mu           sync.RWMutex
	etag         string
	lastFetch    time.Time
	lastCheck    time.Time
	lastError    time.Time
	initialized  bool
	fetching     bool
	cacheTTL     time.Duration
	errorBackoff time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewS3Loader creates a new S3 loader with the given config.
func NewS3Loader(cfg S3LoaderConfig) *S3Loader {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ErrorBackoff == 0 {
		cfg.ErrorBackoff = 1 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &S3Loader{
		client:       cfg.Client,
		bucket:       cfg.Bucket,
		key:          cfg.Key,
		cacheTTL:     cfg.CacheTTL,
		errorBackoff: cfg.ErrorBackoff,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

// IsEnabled returns true if object storage is configured.
func (l *S3Loader) IsEnabled() bool {
	return l.client != nil
}

// CacheTTL returns the refresh interval.
func (l *S3Loader) CacheTTL() time.Duration {
	return l.cacheTTL
}

// NeedsRefresh returns true if the document should be refreshed.
func (l *S3Loader) NeedsRefresh() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now()
	needsRefresh := !l.initialized || now.Sub(l.lastCheck) > l.cacheTTL
	inErrorBackoff := !l.lastError.IsZero() && now.Sub(l.lastError) < l.errorBackoff

	return needsRefresh && !inErrorBackoff && !l.fetching
}

// Fetch retrieves the document with a conditional GET.
// Returns (result, nil) on success or 304, (nil, nil) when there is nothing to
// do (disabled, fresh, missing object) and (nil, err) on failure.
func (l *S3Loader) Fetch(ctx context.Context) (*S3LoadResult, error) {
	if l.client == nil {
		return nil, nil
	}

	l.mu.Lock()
	if l.fetching || (l.initialized && l.now().Sub(l.lastCheck) < l.cacheTTL) {
		l.mu.Unlock()
		return nil, nil
	}
	l.fetching = true
	currentEtag := l.etag
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.fetching = false
		l.mu.Unlock()
	}()

	input := &s3.GetObjectInput{
		Bucket: &l.bucket,
		Key:    &l.key,
	}
	if currentEtag != "" {
		quotedEtag := "\"" + currentEtag + "\""
		input.IfNoneMatch = &quotedEtag
	}

	resp, err := l.client.GetObject(ctx, input)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			l.mu.Lock()
			wasInitialized := l.initialized
			l.initialized = true
			l.lastCheck = l.now()
			l.mu.Unlock()
			if !wasInitialized {
				l.logger.Debug("config object not found (using defaults)",
					"bucket", l.bucket,
					"key", l.key,
				)
			}
			return nil, nil
		}

		var notModified interface{ ErrorCode() string }
		if errors.As(err, &notModified) && notModified.ErrorCode() == "NotModified" {
			l.mu.Lock()
			l.lastCheck = l.now()
			l.mu.Unlock()
			return &S3LoadResult{Etag: currentEtag, NotChanged: true}, nil
		}

		l.markError()
		l.logger.Error("failed to fetch config object",
			"error", err,
			"bucket", l.bucket,
			"key", l.key,
			"next_retry", l.now().Add(l.errorBackoff).Format(time.RFC3339),
		)
		return nil, err
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		l.markError()
		l.logger.Error("failed to parse config object", "error", err, "key", l.key)
		return nil, err
	}

	now := l.now()
	newEtag := ""
	if resp.ETag != nil {
		newEtag = strings.Trim(*resp.ETag, "\"")
	}

	l.mu.Lock()
	l.initialized = true
	l.lastFetch = now
	l.lastCheck = now
	l.lastError = time.Time{}
	l.etag = newEtag
	l.mu.Unlock()

	return &S3LoadResult{
		Data:      raw,
		Etag:      newEtag,
		FetchTime: now,
	}, nil
}

func (l *S3Loader) markError() {
	l.mu.Lock()
	l.lastError = l.now()
	l.initialized = true
	l.mu.Unlock()
}

// S3LoaderStats reports loader state.
type S3LoaderStats struct {
	Initialized bool      `json:"initialized"`
	Etag        string    `json:"etag"`
	LastFetch   time.Time `json:"last_fetch"`
	LastCheck   time.Time `json:"last_check"`
	CacheTTL    string    `json:"cache_ttl"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
}

// Stats returns current loader statistics.
func (l *S3Loader) Stats() S3LoaderStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return S3LoaderStats{
		Initialized: l.initialized,
		Etag:        l.etag,
		LastFetch:   l.lastFetch,
		LastCheck:   l.lastCheck,
		CacheTTL:    l.cacheTTL.String(),
		Bucket:      l.bucket,
		Key:         l.key,
	}
}

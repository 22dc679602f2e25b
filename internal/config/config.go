// Package config handles application configuration.
package config

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL    string
	TursoURL       string // Embedded replica sync target (with TursoAuthToken)
	TursoAuthToken string

	// Sessions
	JWTSecret       string
	SessionExpiry   time.Duration
	EncryptionKey   []byte // 32-byte key for AES-256-GCM encryption of stored API keys
	GeneratedSecret bool   // JWT_SECRET was not set; sessions do not survive a restart

	// CORS
	CORSOrigins []string

	// AI generation
	AIMaxModelAttempts  int           // Models tried per generation call, including the current one
	AIMaxSuggestions    int           // Suggestions returned per content request
	AIRequestTimeout    time.Duration // HTTP client timeout for provider calls
	AIRequestsPerMinute int           // Per-session limit on generation routes
	ProviderBaseURLs    map[string]string

	// Resume import limits
	MaxImportBytes int64

	// Object Storage (Tigris/S3-compatible)
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3 for Tigris
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string // Bucket name (one per environment)
	StorageRegion    string // Region (auto for Tigris)
	LogFiltersKey    string // Object key of the dynamic log filter rules
	BlocklistKey     string // Object key of the IP blocklist

	// Session cleanup
	CleanupEnabled  bool
	CleanupInterval time.Duration

	// Timeouts
	RequestTimeout  time.Duration
	AIRouteTimeout  time.Duration
	ShutdownTimeout time.Duration
	IdleTimeout     time.Duration // Stop the server after this long without requests; 0 disables
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "file:resumeai.db?_journal=WAL&_timeout=5000"),
		TursoURL:       getEnv("TURSO_URL", ""),
		TursoAuthToken: getEnv("TURSO_AUTH_TOKEN", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionExpiry:  getEnvDuration("SESSION_EXPIRY", 90*24*time.Hour),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		AIMaxModelAttempts:  getEnvInt("AI_MAX_MODEL_ATTEMPTS", 3),
		AIMaxSuggestions:    getEnvInt("AI_MAX_SUGGESTIONS", 3),
		AIRequestTimeout:    getEnvDuration("AI_REQUEST_TIMEOUT", 90*time.Second),
		AIRequestsPerMinute: getEnvInt("AI_REQUESTS_PER_MINUTE", 20),
		ProviderBaseURLs: map[string]string{
			"openai":    getEnv("OPENAI_BASE_URL", ""),
			"deepseek":  getEnv("DEEPSEEK_BASE_URL", ""),
			"anthropic": getEnv("ANTHROPIC_BASE_URL", ""),
			"gemini":    getEnv("GEMINI_BASE_URL", ""),
		},

		MaxImportBytes: int64(getEnvInt("MAX_IMPORT_BYTES", 1<<20)),

		// Object Storage (Tigris/S3-compatible) - uses Fly's standard env vars
		// BUCKET_NAME is set automatically by `fly storage create`
		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
		LogFiltersKey:    getEnv("LOG_FILTERS_KEY", "config/logfilters.json"),
		BlocklistKey:     getEnv("BLOCKLIST_KEY", "config/blocklist.json"),

		CleanupEnabled:  getEnvBool("CLEANUP_ENABLED", true),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		AIRouteTimeout:  getEnvDuration("AI_ROUTE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 0),
	}

	// Enable storage if bucket is configured
	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != "" && getEnvBool("STORAGE_ENABLED", true)

	if cfg.AIMaxModelAttempts < 1 {
		return nil, fmt.Errorf("AI_MAX_MODEL_ATTEMPTS must be at least 1, got %d", cfg.AIMaxModelAttempts)
	}
	if cfg.AIMaxSuggestions < 1 {
		return nil, fmt.Errorf("AI_MAX_SUGGESTIONS must be at least 1, got %d", cfg.AIMaxSuggestions)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret(64)
		cfg.GeneratedSecret = true
	}

	// Set up encryption key (derive from JWT secret if not explicitly set)
	encKeyStr := getEnv("ENCRYPTION_KEY", "")
	if encKeyStr != "" {
		decoded, err := base64.StdEncoding.DecodeString(encKeyStr)
		if err != nil || len(decoded) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a base64-encoded 32-byte key")
		}
		cfg.EncryptionKey = decoded
	} else {
		cfg.EncryptionKey = deriveEncryptionKey(cfg.JWTSecret)
	}

	return cfg, nil
}

// ProviderOverrides returns the configured provider base URLs, skipping unset ones.
func (c *Config) ProviderOverrides() map[string]string {
	out := make(map[string]string, len(c.ProviderBaseURLs))
	for provider, url := range c.ProviderBaseURLs {
		if url != "" {
			out[provider] = url
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}

func generateRandomSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "resumeai-secret-change-me-" + base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

// deriveEncryptionKey creates a 32-byte AES-256 key from a secret string using HKDF.
func deriveEncryptionKey(secret string) []byte {
	salt := []byte("resumeai-encryption-key-v1")
	info := []byte("aes-256-gcm-api-keys")

	hkdfReader := hkdf.New(sha256.New, []byte(secret), salt, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		panic("hkdf: failed to derive key: " + err.Error())
	}

	return key
}

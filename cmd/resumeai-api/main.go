// Package main is the entry point for the resumeai API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"

	"github.com/jmylchreest/resumeai/internal/config"
	"github.com/jmylchreest/resumeai/internal/database"
	"github.com/jmylchreest/resumeai/internal/database/migrations"
	"github.com/jmylchreest/resumeai/internal/http/handlers"
	"github.com/jmylchreest/resumeai/internal/http/mw"
	"github.com/jmylchreest/resumeai/internal/http/routes"
	"github.com/jmylchreest/resumeai/internal/logging"
	"github.com/jmylchreest/resumeai/internal/repository"
	"github.com/jmylchreest/resumeai/internal/service"
	"github.com/jmylchreest/resumeai/internal/shutdown"
	"github.com/jmylchreest/resumeai/internal/version"
)

// aiRoutes are the paths that call a provider.
var aiRoutes = []string{"/ai/suggestions", "/templates/generate"}

func main() {
	// A .env file is optional; real environment variables take precedence.
	// Loaded first so LOG_LEVEL and LOG_FORMAT from it apply.
	_ = godotenv.Load()

	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting resumeai-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a generated secret; sessions and stored keys will not survive a restart")
	}

	db, err := database.New(database.Options{
		DSN:            cfg.DatabaseURL,
		TursoURL:       cfg.TursoURL,
		TursoAuthToken: cfg.TursoAuthToken,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if st, err := database.SchemaStatus(context.Background(), db); err == nil {
		logger.Info("database schema", "version", st.Current, "migrations", st.Applied)
	}

	repos := repository.NewRepositories(db)

	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	var providers []string
	for _, p := range services.Registry.Providers() {
		providers = append(providers, p.Name)
	}
	logger.Info("provider registry initialized", "providers", providers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sessions idle longer than a token's lifetime can no longer be reached.
	if cfg.CleanupEnabled {
		go services.Cleanup.RunScheduledCleanup(ctx, cfg.SessionExpiry, cfg.CleanupInterval)
	}

	// Scale to zero once no requests or cleanup passes have run for IdleTimeout.
	idle := shutdown.NewIdleMonitor(shutdown.Config{
		Timeout:     cfg.IdleTimeout,
		Logger:      logger,
		IgnorePaths: []string{"/healthz", "/readyz", "/api/v1/health"},
		Busy:        services.Cleanup.Running,
	})
	go idle.Run(ctx)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(idle.Middleware)

	// Object storage backed configuration
	var logFiltersLoader *mw.LogFiltersLoader
	if services.Storage.IsEnabled() {
		blocklist := mw.NewIPBlocklist(mw.BlocklistConfig{
			Client: services.Storage.Client(),
			Bucket: services.Storage.Bucket(),
			Key:    cfg.BlocklistKey,
			Logger: logger,
		})
		router.Use(blocklist.Middleware())

		logFiltersLoader = mw.NewLogFiltersLoader(mw.LogFiltersConfig{
			Client: services.Storage.Client(),
			Bucket: services.Storage.Bucket(),
			Key:    cfg.LogFiltersKey,
			Logger: logger,
			Apply:  logging.SetFilters,
		})
		logFiltersLoader.Start(ctx)

		logger.Info("object storage config loaders enabled",
			"bucket", services.Storage.Bucket(),
			"configs", []string{cfg.BlocklistKey, cfg.LogFiltersKey},
		)
	}

	router.Use(mw.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:          cfg.RequestTimeout,
		Extended:         cfg.AIRouteTimeout,
		ExtendedPatterns: aiRoutes,
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "X-API-Version", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit (2MB)
	router.Use(middleware.RequestSize(2 * 1024 * 1024))

	router.Use(httprate.LimitByIP(100, time.Minute))
	router.Use(mw.RateLimitBySession(mw.RateLimitConfig{
		SessionRequestsPerMinute: cfg.AIRequestsPerMinute,
		Patterns:                 aiRoutes,
	}, services.Tokens))

	router.Use(middleware.Throttle(100))
	router.Use(mw.APIVersion(v.Short()))

	api := humachi.New(router, routes.NewHumaConfig(cfg.BaseURL))
	api.UseMiddleware(mw.HumaAuth(api, mw.HumaAuthConfig{
		Sessions: services.Session,
		Logger:   logger,
	}))

	routes.Register(api, &routes.Handlers{
		HealthCheck: handlers.HealthCheck,
		Livez:       handlers.Livez,
		Readyz: handlers.NewReadyzHandler(db, func(ctx context.Context) (migrations.Status, error) {
			return database.SchemaStatus(ctx, db)
		}).Readyz,
		Session:     handlers.NewSessionHandler(services.Session, logger),
		AI:          handlers.NewAIHandler(services, logger),
		Template:    handlers.NewTemplateHandler(services, logger),
		Resume:      handlers.NewResumeHandler(services, logger),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AIRouteTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sigChan:
			logger.Info("shutting down server", "signal", sig.String())
		case <-idle.Idle():
			logger.Info("shutting down idle server")
		}

		cancel()
		if logFiltersLoader != nil {
			logFiltersLoader.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server",
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"storage", services.Storage.IsEnabled(),
		"cleanup", cfg.CleanupEnabled,
		"idle_timeout", cfg.IdleTimeout,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

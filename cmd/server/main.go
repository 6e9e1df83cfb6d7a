package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/tesis/internal"
	"github.com/DukeRupert/tesis/internal/backend"
	"github.com/DukeRupert/tesis/internal/csrf"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/handler"
	"github.com/DukeRupert/tesis/internal/i18n"
	"github.com/DukeRupert/tesis/internal/jobs"
	"github.com/DukeRupert/tesis/internal/metrics"
	"github.com/DukeRupert/tesis/internal/middleware"
	"github.com/DukeRupert/tesis/internal/repository"
	"github.com/DukeRupert/tesis/internal/service"
	"github.com/DukeRupert/tesis/internal/worker"
	"github.com/DukeRupert/tesis/web"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	repo := repository.New(db)

	// Thesis backend client
	client, err := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
	}, logger)
	if err != nil {
		return fmt.Errorf("backend client initialization failed: %w", err)
	}

	// Initialize services
	sealer, err := service.NewSealer(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("session sealer initialization failed: %w", err)
	}
	sessionService := service.NewSessionService(repo, client, sealer, service.SessionServiceConfig{
		SessionDuration: cfg.SessionDuration,
	}, logger)
	listService := service.NewListService(client, logger)

	translator, err := i18n.New(cfg.DefaultLocale, logger)
	if err != nil {
		return fmt.Errorf("i18n initialization failed: %w", err)
	}

	// Templates and static assets are embedded; development reads them from
	// disk so edits show up without a rebuild.
	isDev := cfg.Env == "development"
	templatesFS, staticFS := web.Templates(), web.Static()
	if isDev {
		templatesFS, staticFS = os.DirFS("web/templates"), os.DirFS("web/static")
	}

	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templatesFS,
		Logger: logger,
		IsDev:  isDev,
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize middleware
	isSecure := cfg.IsProduction()
	authMw := middleware.NewAuthMiddleware(sessionService, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	loginLimiter := middleware.NewRateLimiter(
		middleware.PerWindow(cfg.LoginRatePerMinute, time.Minute),
		cfg.LoginBurst,
		logger,
	)
	go loginLimiter.Run(ctx, time.Minute)
	loginLimitMw := middleware.NewRateLimitMiddleware(loginLimiter, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessionService, renderer, logger, isSecure)
	listHandler := handler.NewListHandler(listService, cfg.Lists, renderer, logger, isSecure)
	dashboardHandler := handler.NewDashboardHandler(renderer, logger, isSecure)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))
	mux.HandleFunc("GET /", dashboardHandler.Root)

	// Auth routes (public - no session required)
	authHandler.RegisterRoutes(mux, loginLimitMw.Limit)

	requireSession := middleware.Stack(authMw.RequireSession)
	mux.Handle("GET /dashboard", requireSession(http.HandlerFunc(dashboardHandler.Show)))

	listHandler.RegisterRoutes(mux, func(roles ...domain.Role) func(http.Handler) http.Handler {
		return middleware.Stack(authMw.RequireSession, authMw.RequireRole(roles...))
	})

	app := middleware.Stack(
		middleware.RequestID,
		loggingMw.Handler,
		metrics.Middleware,
		securityMw.Handler,
		translator.Middleware,
		authMw.WithSession,
		csrf.Protect(logger),
	)(mux)

	// ==========================================================================
	// Background tasks
	// ==========================================================================

	if cfg.WorkerEnabled {
		w, err := worker.New(worker.Config{
			Interval:        cfg.WorkerPollInterval,
			TaskTimeout:     cfg.WorkerJobTimeout,
			ShutdownTimeout: 30 * time.Second,
			RunOnStart:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		w.Register(jobs.NewPurgeSessionsTask(sessionService, logger))
		w.Start(ctx)
		defer w.Stop()
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

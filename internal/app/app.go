package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/internal/files"
	"attendcli/internal/infrastructure"
	customMiddleware "attendcli/internal/middleware"
	"attendcli/internal/services"
	handlers "attendcli/internal/transport/http"
	"attendcli/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config            *config.Config
	Paths             *config.Paths
	Router            *chi.Mux
	Server            *http.Server
	Logger            *slog.Logger
	OTelProviders     *infrastructure.OTelProviders
	BusinessMetrics   *infrastructure.BusinessMetrics
	ExtractionService *services.ExtractionService
	HealthService     *services.HealthService
}

// NewApplication loads the configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if paths, err := cfg.GetPaths(); err == nil {
		cfg.Logging.FilePath = paths.LogFile(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig builds the application from an already loaded
// configuration. A nil logger falls back to the global infrastructure logger.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", contracts.GetVersionString()),
		slog.String("version", contracts.Version))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		a.BusinessMetrics = metrics
	}

	extraction, err := services.NewExtractionService(a.Config.Extraction, a.Paths, a.BusinessMetrics, a.Logger)
	if err != nil {
		return err
	}
	a.ExtractionService = extraction
	a.HealthService = services.NewHealthService(a.Paths, a.Logger)

	return nil
}

// setupRouter configures the chi router
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	// stack traces reach problem responses only when debugging
	errorHandler := errors.NewErrorHandler(a.Logger, strings.EqualFold(a.Config.Logging.Level, "debug"))

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.BusinessMetrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	extraction := handlers.NewExtractionHandler(a.ExtractionService, files.NewManager(a.Paths), a.Logger, errorHandler)
	health := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", health.Routes())
		r.Get("/version", health.Version)
		r.Get("/grades", extraction.Grades)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes))
			r.Use(customMiddleware.Timeout(a.Config.Server.ExtractTimeout, a.Logger))
			r.Mount("/extract", extraction.Routes())
		})
	})

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Attendance-Warnings", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server in the background. cancel is called when the
// server stops on its own.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if status := a.HealthService.ReadinessCheck(ctx); status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness check failed", slog.Any("services", status.Services))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully shuts down the server and telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the application and blocks until SIGINT/SIGTERM or a server error
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(ctx)
}

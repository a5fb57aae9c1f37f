package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"crpdash/internal/auth"
	"crpdash/internal/charts"
	"crpdash/internal/config"
	"crpdash/internal/dataprocessing"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/infrastructure"
	customMiddleware "crpdash/internal/middleware"
	"crpdash/internal/services"
	handlers "crpdash/internal/transport/http"
)

// BuildTime is set at link time with -ldflags "-X crpdash/internal/app.BuildTime=..."
var BuildTime = ""

// LoginPath is where the session gate sends anonymous browsers
const LoginPath = "/login"

const sessionJanitorInterval = 5 * time.Minute

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset       *services.DatasetService
	Health        *services.HealthService
	Sessions      *auth.SessionStore
	Authenticator auth.Authenticator
	Pages         *handlers.Pages
}

// NewApplication loads configuration, initializes logging and builds the
// application. The workbook must load, otherwise no application is returned.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	paths.LogPathResolution(logger)
	cfg.Data.WorkbookPath = paths.ResolveWorkbook(cfg.Data.WorkbookPath)

	return New(ctx, cfg, logger)
}

// New builds the application from an explicit configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(ctx); err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	authenticator, err := auth.NewStaticAuthenticator(a.Config.Auth.Username, a.Config.Auth.Password, a.Config.Auth.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	if a.Config.Auth.PasswordHash == "" {
		a.Logger.Warn("Using plain-text password from configuration; set auth.password_hash to avoid it")
	}

	pages, err := handlers.NewPages()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	dataset := services.NewDatasetService(
		dataprocessing.LoadOptionsFrom(a.Config.Data),
		dataprocessing.NewDeriver(nil),
		a.Metrics,
		a.Logger,
	)
	if _, err := dataset.Load(ctx); err != nil {
		return err
	}

	sessions := auth.NewSessionStore(a.Config.Auth.SessionTTL)
	health := services.NewHealthService(config.AppVersion, BuildTime, dataset, sessions, a.Logger)

	a.Services = &ServiceContainer{
		Dataset:       dataset,
		Health:        health,
		Sessions:      sessions,
		Authenticator: authenticator,
		Pages:         pages,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.DefaultSecureHeaders().Handler)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
	r.Use(customMiddleware.Compress(5))

	validator := customMiddleware.NewValidator()
	gate := customMiddleware.NewSessionGate(a.Services.Sessions, a.Config.Auth.CookieName, LoginPath, a.Logger)
	audit := customMiddleware.AuditLog(a.Logger)

	authHandler := handlers.NewAuthHandler(
		a.Services.Authenticator,
		a.Services.Sessions,
		a.Services.Pages,
		handlers.CookieOptions{Name: a.Config.Auth.CookieName, Secure: a.Config.Auth.SecureCookie},
		validator,
		a.Metrics,
		errorHandler,
		a.Logger,
	)
	dashboardHandler := handlers.NewDashboardHandler(
		a.Services.Dataset,
		a.Services.Pages,
		handlers.DashboardOptions{
			RawTableLimit: a.Config.Dashboard.RawTableLimit,
			ChartSize:     charts.SizeFrom(a.Config.Dashboard),
		},
		validator,
		errorHandler,
		a.Logger,
	)

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Get(LoginPath, authHandler.ShowLogin)
	r.Post(LoginPath, authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(gate.Handler)
		r.Use(audit)

		r.Get("/", dashboardHandler.Dashboard)
		r.Get(handlers.DisabilityChartPath, dashboardHandler.DisabilityChart)
		r.Post("/logout", authHandler.Logout)
	})

	a.setupAPIRoutes(r, validator, gate, errorHandler)

	a.Router = r
}

// setupAPIRoutes configures API endpoints. Health and version stay open for
// probes; everything touching registration data sits behind the gate.
func (a *Application) setupAPIRoutes(r chi.Router, validator *customMiddleware.Validator, gate *customMiddleware.SessionGate, errorHandler *apierrors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dataHandler := handlers.NewDataHandler(a.Services.Dataset, validator, errorHandler, a.Logger)
		r.With(gate.Handler, customMiddleware.AuditLog(a.Logger)).Mount("/", dataHandler.Routes())
	})
}

// getCORSConfig returns the CORS configuration. Cross-origin access is off
// unless enabled; the dashboard itself is same-origin.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = a.Config.Security.AllowedOrigins
		a.Logger.Info("CORS enabled", slog.Any("allowed_origins", cfg.AllowedOrigins))
	}
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the server and the session janitor. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	status := a.Services.Dataset.Status()
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("workbook", status.Source),
		slog.Int("records", status.Records))

	go a.Services.Sessions.RunJanitor(ctx, sessionJanitorInterval)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
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
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted. SIGHUP reloads the workbook.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				a.reload(ctx)
				continue
			}
			a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
		case <-ctx.Done():
			a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
		}
		return a.Stop(context.Background())
	}
}

// reload refreshes the dataset; a failure keeps the current snapshot
func (a *Application) reload(ctx context.Context) {
	a.Logger.InfoContext(ctx, "Reload requested by signal")
	if _, err := a.Services.Dataset.Load(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Reload failed, keeping current dataset", slog.String("error", err.Error()))
	}
}

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
	"golang.org/x/sync/errgroup"

	"ricecast/internal/config"
	apierrors "ricecast/internal/errors"
	"ricecast/internal/infrastructure"
	customMiddleware "ricecast/internal/middleware"
	"ricecast/internal/services"
	"ricecast/internal/session"
	handlers "ricecast/internal/transport/http"
	"ricecast/pkg/contracts"
)

// AppName is logged at startup.
const AppName = "ricecast - rice price forecasting"

// rateLimitPruneInterval is how often idle rate limit clients are dropped.
const rateLimitPruneInterval = time.Minute

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.ForecastMetrics
	Sessions        *session.Store
	ForecastService *services.ForecastService
	HealthService   *services.HealthService
	ErrorHandler    *apierrors.ErrorHandler
	RateLimiter     *customMiddleware.RateLimiter
}

// NewApplication loads the configuration, initializes logging and
// OpenTelemetry and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetVersionString()))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, providers)
}

// New wires an application from already initialized parts. Tests pass
// no-op providers here.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	metrics, err := infrastructure.CreateForecastMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.Sessions = session.NewStore(session.Options{
		TTL:        a.Config.Upload.SessionTTL,
		MaxEntries: a.Config.Upload.MaxSessions,
	}, a.Logger)

	forecastService, err := services.NewForecastService(a.Sessions, a.Config.Forecast, a.OTelProviders, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize forecast service: %w", err)
	}
	a.ForecastService = forecastService

	a.HealthService = services.NewHealthService(a.Sessions, a.Config.Upload.MaxSessions, a.Logger)

	if a.Config.Security.RateLimit.Enabled {
		a.RateLimiter = customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		)
	}

	return nil
}

// setupRouter builds the chi router.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	validator := customMiddleware.NewValidator(a.Logger)
	maxUpload := a.Config.Upload.MaxBytes

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.RateLimiter != nil {
			r.Use(a.RateLimiter.Handler)
		}
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, a.ErrorHandler))
		}

		pageHandler := handlers.NewPageHandler(a.ForecastService, validator, maxUpload, a.Logger)
		r.Get("/", pageHandler.Index)
		r.Post("/", pageHandler.Submit)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)

			forecastHandler := handlers.NewForecastHandler(a.ForecastService, validator, a.ErrorHandler, maxUpload, a.Logger)
			r.Mount("/datasets", forecastHandler.DatasetRoutes())
			r.With(customMiddleware.ContentTypeValidator(a.ErrorHandler, "multipart/form-data")).
				Post("/forecast", forecastHandler.ForecastFile)
		})
	})

	// Outside the group so scrapes are neither traced nor rate limited.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// getCORSConfig returns the CORS settings for API clients on other origins.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
	a.Logger.Info("CORS enabled", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the server and the background sweepers until ctx is cancelled
// or the server fails.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Sessions.Run(gctx, a.Config.Upload.SweepInterval)
		return nil
	})
	if a.RateLimiter != nil {
		g.Go(func() error {
			a.RateLimiter.Run(gctx, rateLimitPruneInterval)
			return nil
		})
	}
	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("cached_datasets", a.Sessions.Len()))
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Start(ctx)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	handlers "github.com/de-tools/medical-reports/pkg/handlers/report"
	"github.com/de-tools/medical-reports/pkg/serializers"
	reportsmiddleware "github.com/de-tools/medical-reports/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router http.Handler
	logger *zerolog.Logger
	server *http.Server
	config Config
}

// Dependencies are the collaborators behind the routes. A nil Gatherer serves
// /metrics from the default registry.
type Dependencies struct {
	Reports  handlers.Source
	Files    handlers.Files
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateLimitBurst  int
	AllowedOrigins  []string
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	logger := config.Dependencies.Logger
	reportHandler := handlers.NewHandler(config.Dependencies.Reports, config.Dependencies.Files)

	gatherer := config.Dependencies.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	limit, burst := rate.Limit(config.RateLimit), config.RateLimitBurst
	if config.RateLimit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	router := chi.NewRouter()

	router.Use(reportsmiddleware.RequestID)
	router.Use(reportsmiddleware.Logger(&logger))
	router.Use(reportsmiddleware.Metrics)
	router.Use(reportsmiddleware.Recoverer)
	router.Use(reportsmiddleware.SecurityHeaders)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", reportsmiddleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", reportsmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		serializers.RespondError(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		serializers.RespondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", handleHealth)
	router.Get("/ready", handleReady(config.Dependencies.Reports, config.Dependencies.Files))
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api", func(r chi.Router) {
		r.Use(reportsmiddleware.RateLimit(limiter))

		r.Get("/test", reportHandler.Test)
		r.Get("/latest-report", reportHandler.LatestReport)
		r.Get("/download-report/{filename}", reportHandler.DownloadReport)
		r.Get("/report-info", reportHandler.ReportInfo)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}

	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &logger,
		config: config,
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is cancelled, then drains outstanding requests.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

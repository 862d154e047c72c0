package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cashmachine/internal/api"
	"github.com/eugenenazirov/cashmachine/internal/config"
	"github.com/eugenenazirov/cashmachine/internal/metrics"
	"github.com/eugenenazirov/cashmachine/internal/storage"
)

const metricsNamespace = "cashmachine"

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	registry *prometheus.Registry
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetBanknotes(cfg.Banknotes); err != nil {
		return nil, fmt.Errorf("failed to apply initial banknotes: %w", err)
	}

	handlerOpts := []api.HandlerOption{
		api.WithStrategy(cfg.Strategy),
		api.WithHandlerLogger(logger),
	}

	var (
		registry       *prometheus.Registry
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		handlerOpts = append(handlerOpts, api.WithMetrics(metrics.New(metricsNamespace, registry)))
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	handler := api.NewHandler(store, handlerOpts...)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler))

	return &App{
		storage:  store,
		registry: registry,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   server,
	}, nil
}

// BuildRootHandler mounts the API under /api/ and, when metricsHandler is not
// nil, the Prometheus endpoint under /metrics. Everything else is not found.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.Handle("/", http.NotFoundHandler())
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

const shutdownTimeout = 5 * time.Second

// View is the default tag filter and direction for requests that do not set them.
type View struct {
	Filter  models.Tag
	Reverse bool
}

// Server exposes the graph store over HTTP.
type Server struct {
	logger   *slog.Logger
	store    *graph.Store
	cfg      config.ServerConfig
	registry *prometheus.Registry
	engine   *gin.Engine
}

// NewServer creates a new API server over store and registers its build metrics
// as a store observer.
func NewServer(logger *slog.Logger, store *graph.Store, cfg config.ServerConfig, view View) *Server {
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	store.AddObserver(NewMetrics(registry))

	engine := gin.New()
	// identities contain slashes; clients escape them as %2F
	engine.UseRawPath = true
	engine.Use(gin.Recovery(), requestLogger(logger))

	handlers := NewHandlers(logger, store, view)
	RegisterRoutes(engine.Group("/api/v1"), handlers)
	engine.GET("/healthz", handlers.HandleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		logger:   logger,
		store:    store,
		cfg:      cfg,
		registry: registry,
		engine:   engine,
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

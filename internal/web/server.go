package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/reunia/face-service/internal/config"
	"github.com/reunia/face-service/internal/inference"
	"github.com/reunia/face-service/internal/metrics"
)

// Server represents the face service HTTP server.
type Server struct {
	config     *config.Config
	log        *slog.Logger
	metrics    *metrics.Metrics
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates the HTTP server with the standard middleware stack and
// all routes wired. The detector and embedder are the injected inference
// capabilities; version is the build version reported by /health.
func NewServer(
	cfg *config.Config,
	log *slog.Logger,
	m *metrics.Metrics,
	detector inference.Detector,
	embedder inference.Embedder,
	version string,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:  cfg,
		log:     log,
		metrics: m,
		router:  r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(s.observeRequests)

	s.setupRoutes(detector, embedder, version)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// observeRequests records per-endpoint request counts and latency.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.metrics.ObserveRequest(r.URL.Path, ww.Status(), time.Since(start))
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("starting face service", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down face service")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

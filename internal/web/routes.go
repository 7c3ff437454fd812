package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/reunia/face-service/internal/inference"
	"github.com/reunia/face-service/internal/web/handlers"
	"github.com/reunia/face-service/internal/web/middleware"
)

func (s *Server) setupRoutes(detector inference.Detector, embedder inference.Embedder, version string) {
	faceHandler := handlers.NewFaceHandler(s.config, s.log, s.metrics, detector, embedder)
	healthHandler := handlers.NewHealthHandler(s.config.Service.Name, version)

	// Health and metrics need no auth.
	s.router.Get("/health", healthHandler.Get)
	s.router.Method("GET", "/metrics", s.metrics.Handler())
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Use(middleware.RequireAPIKey(s.config.Web.APIKey))

		r.Post("/detect", faceHandler.Detect)
		r.Post("/embed", faceHandler.Embed)
		r.Post("/match", faceHandler.Match)
		r.Post("/batch-embed", faceHandler.BatchEmbed)
	})
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reunia/face-service/internal/config"
	"github.com/reunia/face-service/internal/inference"
	"github.com/reunia/face-service/internal/match"
	"github.com/reunia/face-service/internal/metrics"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// FaceHandler serves the face endpoints: detection and embedding delegate
// to the injected inference capabilities, matching runs the in-process
// ranking engine.
type FaceHandler struct {
	config   *config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	ranker   *match.Ranker
	detector inference.Detector
	embedder inference.Embedder
}

// NewFaceHandler creates a FaceHandler and its ranking engine from config.
func NewFaceHandler(
	cfg *config.Config,
	log *slog.Logger,
	m *metrics.Metrics,
	detector inference.Detector,
	embedder inference.Embedder,
) *FaceHandler {
	return &FaceHandler{
		config:   cfg,
		log:      log,
		metrics:  m,
		ranker:   match.NewRanker(cfg.Matching.Thresholds, cfg.Matching.EmbeddingDim, log),
		detector: detector,
		embedder: embedder,
	}
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response in the service envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}

// HealthHandler serves the unauthenticated health endpoint.
type HealthHandler struct {
	service string
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Get handles the health check endpoint.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

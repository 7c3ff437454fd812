package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/reunia/face-service/internal/inference"
)

// EmbedRequest asks for an embedding of a face image, optionally guided by
// a known bounding box to skip detection.
type EmbedRequest struct {
	ImageBase64 string                 `json:"image_base64"`
	FaceBBox    *inference.BoundingBox `json:"face_bbox,omitempty"`
}

// EmbedResponse carries one generated embedding.
type EmbedResponse struct {
	Success        bool      `json:"success"`
	Embedding      []float32 `json:"embedding"`
	EmbeddingDims  int       `json:"embedding_dims"`
	FaceConfidence *float64  `json:"face_confidence,omitempty"`
	FaceQuality    *float64  `json:"face_quality,omitempty"`
	ProcessingMS   int64     `json:"processing_ms"`
}

// BatchEmbedItem is one image in a batch embedding request.
type BatchEmbedItem struct {
	ImageID     string `json:"image_id"`
	ImageBase64 string `json:"image_base64"`
}

// BatchEmbedRequest processes multiple images in one request.
type BatchEmbedRequest struct {
	Images []BatchEmbedItem `json:"images"`
}

// BatchEmbedResult is the per-image outcome inside a batch response.
// Failed images carry an error instead of an embedding.
type BatchEmbedResult struct {
	ImageID        string    `json:"image_id"`
	Success        bool      `json:"success"`
	Embedding      []float32 `json:"embedding,omitempty"`
	FaceConfidence *float64  `json:"face_confidence,omitempty"`
	FaceQuality    *float64  `json:"face_quality,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// BatchEmbedResponse summarizes a batch embedding run.
type BatchEmbedResponse struct {
	Success      bool               `json:"success"`
	BatchID      string             `json:"batch_id"`
	Results      []BatchEmbedResult `json:"results"`
	Processed    int                `json:"processed"`
	Succeeded    int                `json:"succeeded"`
	Failed       int                `json:"failed"`
	ProcessingMS int64              `json:"processing_ms"`
}

// Embed generates an embedding for a single face image via the inference
// backend.
func (h *FaceHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, errInvalidRequestBody)
		return
	}
	if req.ImageBase64 == "" {
		respondError(w, http.StatusUnprocessableEntity, "image_base64 is required")
		return
	}

	start := time.Now()
	emb, err := h.embedder.Embed(r.Context(), req.ImageBase64, req.FaceBBox)
	h.metrics.ObserveEmbed(err != nil)
	if err != nil {
		h.log.Error("embedding generation failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal embedding error")
		return
	}

	respondJSON(w, http.StatusOK, EmbedResponse{
		Success:        true,
		Embedding:      emb.Vector,
		EmbeddingDims:  len(emb.Vector),
		FaceConfidence: emb.FaceConfidence,
		FaceQuality:    emb.FaceQuality,
		ProcessingMS:   time.Since(start).Milliseconds(),
	})
}

// BatchEmbed processes multiple images for the ingestion pipeline. A
// failed image never fails the batch; it is reported per item with its
// error. The batch is capped at the configured max batch size.
func (h *FaceHandler) BatchEmbed(w http.ResponseWriter, r *http.Request) {
	var req BatchEmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, errInvalidRequestBody)
		return
	}
	if len(req.Images) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "images is required")
		return
	}
	if len(req.Images) > h.config.Matching.MaxBatchSize {
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("batch size %d exceeds limit %d", len(req.Images), h.config.Matching.MaxBatchSize))
		return
	}

	start := time.Now()
	batchID := uuid.New().String()
	results := make([]BatchEmbedResult, 0, len(req.Images))
	succeeded := 0

	for _, item := range req.Images {
		emb, err := h.embedder.Embed(r.Context(), item.ImageBase64, nil)
		h.metrics.ObserveEmbed(err != nil)
		if err != nil {
			h.log.Warn("batch embed failed for image",
				slog.String("batch_id", batchID),
				slog.String("image_id", sanitizeForLog(item.ImageID)),
				slog.Any("error", err),
			)
			results = append(results, BatchEmbedResult{
				ImageID: item.ImageID,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		succeeded++
		results = append(results, BatchEmbedResult{
			ImageID:        item.ImageID,
			Success:        true,
			Embedding:      emb.Vector,
			FaceConfidence: emb.FaceConfidence,
			FaceQuality:    emb.FaceQuality,
		})
	}

	respondJSON(w, http.StatusOK, BatchEmbedResponse{
		Success:      true,
		BatchID:      batchID,
		Results:      results,
		Processed:    len(results),
		Succeeded:    succeeded,
		Failed:       len(results) - succeeded,
		ProcessingMS: time.Since(start).Milliseconds(),
	})
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/reunia/face-service/internal/inference"
)

// DetectRequest asks for face detection on a base64-encoded image.
type DetectRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// DetectResponse lists the faces found in an image.
type DetectResponse struct {
	Success      bool                     `json:"success"`
	Faces        []inference.DetectedFace `json:"faces"`
	FaceCount    int                      `json:"face_count"`
	ImageWidth   int                      `json:"image_width"`
	ImageHeight  int                      `json:"image_height"`
	ProcessingMS int64                    `json:"processing_ms"`
}

// Detect forwards an image to the inference backend and returns bounding
// boxes and confidence scores for all detected faces.
func (h *FaceHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, errInvalidRequestBody)
		return
	}
	if req.ImageBase64 == "" {
		respondError(w, http.StatusUnprocessableEntity, "image_base64 is required")
		return
	}

	start := time.Now()
	h.metrics.ObserveDetect()

	det, err := h.detector.Detect(r.Context(), req.ImageBase64)
	if err != nil {
		h.log.Error("detection failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal face detection error")
		return
	}

	faces := det.Faces
	if faces == nil {
		faces = []inference.DetectedFace{}
	}
	respondJSON(w, http.StatusOK, DetectResponse{
		Success:      true,
		Faces:        faces,
		FaceCount:    len(faces),
		ImageWidth:   det.ImageWidth,
		ImageHeight:  det.ImageHeight,
		ProcessingMS: time.Since(start).Milliseconds(),
	})
}

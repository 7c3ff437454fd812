package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/reunia/face-service/internal/config"
	"github.com/reunia/face-service/internal/inference"
	"github.com/reunia/face-service/internal/match"
	"github.com/reunia/face-service/internal/metrics"
)

// testConfig creates a minimal config for handler tests. The embedding
// dimension is kept small so test vectors stay readable.
func testConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "reunia-face-service"},
		Matching: config.MatchingConfig{
			Thresholds:       match.Thresholds{High: 0.85, Medium: 0.70, Low: 0.55, Reject: 0.55},
			DefaultThreshold: 0.55,
			DefaultResults:   20,
			MaxResults:       100,
			EmbeddingDim:     2,
			MaxBatchSize:     3,
			BatchCutover:     64,
		},
	}
}

// stubDetector returns a fixed detection or error.
type stubDetector struct {
	detection *inference.Detection
	err       error
}

func (s *stubDetector) Detect(ctx context.Context, imageBase64 string) (*inference.Detection, error) {
	return s.detection, s.err
}

// stubEmbedder returns per-call results keyed by image payload, falling
// back to a fixed result.
type stubEmbedder struct {
	embedding *inference.Embedding
	err       error
	failFor   map[string]error
}

func (s *stubEmbedder) Embed(ctx context.Context, imageBase64 string, bbox *inference.BoundingBox) (*inference.Embedding, error) {
	if err, ok := s.failFor[imageBase64]; ok {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

// newTestFaceHandler builds a FaceHandler with stub inference backends.
func newTestFaceHandler(t *testing.T, detector inference.Detector, embedder inference.Embedder) *FaceHandler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFaceHandler(testConfig(), log, metrics.New("face_test"), detector, embedder)
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
	if success, ok := result["success"].(bool); !ok || success {
		t.Errorf("expected success=false in error envelope, got %v", result["success"])
	}
}

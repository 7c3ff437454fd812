package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reunia/face-service/internal/inference"
)

func testEmbedding(dim int) *inference.Embedding {
	conf := 0.95
	return &inference.Embedding{Vector: make([]float32, dim), FaceConfidence: &conf}
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handlerFn(recorder, req)
	return recorder
}

func TestEmbed_MissingImage(t *testing.T) {
	handler := newTestFaceHandler(t, nil, &stubEmbedder{})
	recorder := postJSON(t, handler.Embed, "/embed", `{}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "image_base64 is required")
}

func TestEmbed_Success(t *testing.T) {
	handler := newTestFaceHandler(t, nil, &stubEmbedder{embedding: testEmbedding(512)})

	recorder := postJSON(t, handler.Embed, "/embed", `{"image_base64": "aW1hZ2U="}`)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp EmbedResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.Success || resp.EmbeddingDims != 512 {
		t.Errorf("unexpected response: success=%v dims=%d", resp.Success, resp.EmbeddingDims)
	}
	if resp.FaceConfidence == nil || *resp.FaceConfidence != 0.95 {
		t.Errorf("face_confidence = %v, want 0.95", resp.FaceConfidence)
	}
}

func TestEmbed_BackendError(t *testing.T) {
	handler := newTestFaceHandler(t, nil, &stubEmbedder{err: errors.New("no face found")})

	recorder := postJSON(t, handler.Embed, "/embed", `{"image_base64": "aW1hZ2U="}`)
	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "internal embedding error")
}

func TestBatchEmbed_EmptyBatch(t *testing.T) {
	handler := newTestFaceHandler(t, nil, &stubEmbedder{})
	recorder := postJSON(t, handler.BatchEmbed, "/batch-embed", `{"images": []}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "images is required")
}

func TestBatchEmbed_OverLimit(t *testing.T) {
	// testConfig caps batches at 3 images.
	handler := newTestFaceHandler(t, nil, &stubEmbedder{embedding: testEmbedding(512)})

	body := `{"images": [
		{"image_id": "1", "image_base64": "YQ=="},
		{"image_id": "2", "image_base64": "Yg=="},
		{"image_id": "3", "image_base64": "Yw=="},
		{"image_id": "4", "image_base64": "ZA=="}
	]}`
	recorder := postJSON(t, handler.BatchEmbed, "/batch-embed", body)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestBatchEmbed_PartialFailure(t *testing.T) {
	embedder := &stubEmbedder{
		embedding: testEmbedding(512),
		failFor:   map[string]error{"YmFk": errors.New("no face detected")},
	}
	handler := newTestFaceHandler(t, nil, embedder)

	body := `{"images": [
		{"image_id": "ok-1", "image_base64": "Z29vZA=="},
		{"image_id": "broken", "image_base64": "YmFk"},
		{"image_id": "ok-2", "image_base64": "Z29vZDI="}
	]}`
	recorder := postJSON(t, handler.BatchEmbed, "/batch-embed", body)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp BatchEmbedResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Processed != 3 || resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", resp.Processed, resp.Succeeded, resp.Failed)
	}
	if resp.BatchID == "" {
		t.Error("batch_id should be set")
	}
	for _, result := range resp.Results {
		if result.ImageID == "broken" {
			if result.Success || result.Error == "" {
				t.Errorf("broken image should carry an error: %+v", result)
			}
		} else if !result.Success {
			t.Errorf("image %s should have succeeded: %+v", result.ImageID, result)
		}
	}
}

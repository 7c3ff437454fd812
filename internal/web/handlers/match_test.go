package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reunia/face-service/internal/match"
)

func postMatch(t *testing.T, handler *FaceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/match", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.Match(recorder, req)
	return recorder
}

func TestMatch_InvalidJSON(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)
	recorder := postMatch(t, handler, `{invalid json}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "invalid request body")
}

func TestMatch_MissingQueryEmbedding(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)
	recorder := postMatch(t, handler, `{"candidates": []}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "query_embedding is required")
}

func TestMatch_ThresholdOutOfRange(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)
	recorder := postMatch(t, handler, `{"query_embedding": [1, 0], "threshold": 1.5}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "threshold must be in [0, 1]")
}

func TestMatch_MaxResultsOutOfRange(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)

	for _, body := range []string{
		`{"query_embedding": [1, 0], "max_results": 0}`,
		`{"query_embedding": [1, 0], "max_results": 500}`,
	} {
		recorder := postMatch(t, handler, body)
		assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
		assertJSONError(t, recorder, "max_results out of range")
	}
}

func TestMatch_QueryDimensionMismatch(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)
	recorder := postMatch(t, handler, `{"query_embedding": [1, 0, 0]}`)
	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestMatch_EmptyCandidates(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)
	recorder := postMatch(t, handler, `{"query_embedding": [1, 0], "candidates": []}`)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp MatchResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.Success || resp.MatchCount != 0 || len(resp.Matches) != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.QueryThreshold != 0.55 {
		t.Errorf("query_threshold = %v, want default 0.55", resp.QueryThreshold)
	}
}

func TestMatch_RankedResults(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)

	body := `{
		"query_embedding": [1, 0],
		"candidates": [
			{"face_embedding_id": "b", "person_id": "p2", "case_id": "c2", "embedding": [0.60, 0.80]},
			{"face_embedding_id": "a", "person_id": "p1", "case_id": "c1", "embedding": [1, 0]},
			{"face_embedding_id": "rejected", "person_id": "p3", "case_id": "c3", "embedding": [0.10, 0.99]}
		]
	}`
	recorder := postMatch(t, handler, body)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp MatchResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.MatchCount != 2 {
		t.Fatalf("match_count = %d, want 2: %+v", resp.MatchCount, resp.Matches)
	}
	if resp.Matches[0].FaceEmbeddingID != "a" || resp.Matches[1].FaceEmbeddingID != "b" {
		t.Errorf("ranking order = %q, %q; want a, b", resp.Matches[0].FaceEmbeddingID, resp.Matches[1].FaceEmbeddingID)
	}
	if resp.Matches[0].ConfidenceTier != match.TierHigh {
		t.Errorf("top tier = %v, want HIGH", resp.Matches[0].ConfidenceTier)
	}
	if math.Abs(resp.Matches[1].Similarity-0.6) > 1e-5 {
		t.Errorf("second similarity = %v, want 0.6", resp.Matches[1].Similarity)
	}
}

func TestMatch_SkippedCandidatesReported(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)

	body := `{
		"query_embedding": [1, 0],
		"candidates": [
			{"face_embedding_id": "bad", "embedding": [1, 0, 0]},
			{"face_embedding_id": "good", "embedding": [1, 0]}
		]
	}`
	recorder := postMatch(t, handler, body)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp MatchResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.SkippedCount != 1 || len(resp.Skipped) != 1 {
		t.Fatalf("skipped = %+v (count %d), want one entry", resp.Skipped, resp.SkippedCount)
	}
	if resp.Skipped[0].FaceEmbeddingID != "bad" {
		t.Errorf("skipped id = %q, want %q", resp.Skipped[0].FaceEmbeddingID, "bad")
	}
	if resp.MatchCount != 1 {
		t.Errorf("match_count = %d, want 1", resp.MatchCount)
	}
}

func TestMatch_BatchPathAboveCutover(t *testing.T) {
	handler := newTestFaceHandler(t, nil, nil)

	req := MatchRequest{QueryEmbedding: []float32{1, 0}}
	for i := 0; i < 200; i++ {
		req.Candidates = append(req.Candidates, match.Candidate{
			FaceEmbeddingID: fmt.Sprintf("cand-%d", i),
			Embedding:       []float32{1, 0},
		})
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	recorder := postMatch(t, handler, string(raw))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp MatchResponse
	parseJSONResponse(t, recorder, &resp)
	// Default max_results caps the output at 20 even though all 200 match.
	if resp.MatchCount != 20 {
		t.Errorf("match_count = %d, want 20", resp.MatchCount)
	}
	if resp.Matches[0].FaceEmbeddingID != "cand-0" {
		t.Errorf("tie-break should keep first appearance, got %q", resp.Matches[0].FaceEmbeddingID)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/reunia/face-service/internal/match"
)

// MatchRequest compares a query embedding against candidate embeddings.
type MatchRequest struct {
	QueryEmbedding []float32         `json:"query_embedding"`
	Candidates     []match.Candidate `json:"candidates"`
	Threshold      *float64          `json:"threshold"`
	MaxResults     *int              `json:"max_results"`
}

// MatchResponse is the ranked match list for one query.
type MatchResponse struct {
	Success        bool            `json:"success"`
	Matches        []match.Result  `json:"matches"`
	MatchCount     int             `json:"match_count"`
	Skipped        []match.Skipped `json:"skipped,omitempty"`
	SkippedCount   int             `json:"skipped_count"`
	QueryThreshold float64         `json:"query_threshold"`
	ProcessingMS   int64           `json:"processing_ms"`
}

// parseMatchRequest decodes and validates a match request, applying
// configured defaults. Returns an error message if invalid.
func (h *FaceHandler) parseMatchRequest(r *http.Request) (MatchRequest, float64, int, string) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, 0, 0, errInvalidRequestBody
	}
	if len(req.QueryEmbedding) == 0 {
		return req, 0, 0, "query_embedding is required"
	}

	threshold := h.config.Matching.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return req, 0, 0, "threshold must be in [0, 1]"
	}

	maxResults := h.config.Matching.DefaultResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}
	if maxResults < 1 || maxResults > h.config.Matching.MaxResults {
		return req, 0, 0, "max_results out of range"
	}

	return req, threshold, maxResults, ""
}

// Match compares a query embedding against candidate embeddings and
// returns ranked matches above the similarity threshold. Large candidate
// sets take the batch ranking path; both paths produce the same ranking.
func (h *FaceHandler) Match(w http.ResponseWriter, r *http.Request) {
	req, threshold, maxResults, errMsg := h.parseMatchRequest(r)
	if errMsg != "" {
		respondError(w, http.StatusUnprocessableEntity, errMsg)
		return
	}

	rank := h.ranker.Rank
	if len(req.Candidates) >= h.config.Matching.BatchCutover {
		rank = h.ranker.RankBatch
	}

	out, err := rank(req.QueryEmbedding, req.Candidates, threshold, maxResults)
	if err != nil {
		var dimErr *match.DimensionError
		if errors.As(err, &dimErr) {
			respondError(w, http.StatusUnprocessableEntity, dimErr.Error())
			return
		}
		h.log.Error("unexpected error in /match", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal matching error")
		return
	}

	h.metrics.ObserveMatch(len(req.Candidates), len(out.Skipped), len(out.Matches),
		time.Duration(out.ElapsedMS)*time.Millisecond)

	respondJSON(w, http.StatusOK, MatchResponse{
		Success:        true,
		Matches:        out.Matches,
		MatchCount:     len(out.Matches),
		Skipped:        out.Skipped,
		SkippedCount:   len(out.Skipped),
		QueryThreshold: threshold,
		ProcessingMS:   out.ElapsedMS,
	})
}

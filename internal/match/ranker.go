package match

import (
	"log/slog"
	"math"
	"sort"
	"time"
)

// DefaultDim is the embedding dimensionality produced by the ArcFace model.
const DefaultDim = 512

// Ranker compares a query embedding against candidate embeddings and
// returns a ranked, bounded match list. It holds no mutable state, so a
// single Ranker is safe for concurrent use.
type Ranker struct {
	thresholds Thresholds
	dim        int
	log        *slog.Logger
}

// NewRanker creates a Ranker with the given tier thresholds and expected
// embedding dimensionality. A dim of 0 falls back to DefaultDim; a nil
// logger falls back to slog.Default().
func NewRanker(thresholds Thresholds, dim int, log *slog.Logger) *Ranker {
	if dim <= 0 {
		dim = DefaultDim
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ranker{thresholds: thresholds, dim: dim, log: log}
}

// Thresholds returns the configured tier cutoffs.
func (r *Ranker) Thresholds() Thresholds { return r.thresholds }

// Dim returns the expected embedding dimensionality.
func (r *Ranker) Dim() int { return r.dim }

// Rank compares query against every candidate, classifies each similarity
// into a confidence tier, and returns matches sorted by similarity
// descending, truncated to maxResults (minimum 1).
//
// A candidate is excluded when its tier is REJECTED or its similarity is
// below threshold; both checks run explicitly. Candidates whose embedding
// is not r.dim long are skipped without failing the batch and reported in
// the outcome. A query that is not r.dim long fails the whole call.
//
// An empty candidate set is not an error and yields an empty match list.
func (r *Ranker) Rank(query []float32, candidates []Candidate, threshold float64, maxResults int) (*Outcome, error) {
	start := time.Now()

	if len(query) != r.dim {
		return nil, newDimensionError(r.dim, len(query))
	}
	if maxResults < 1 {
		maxResults = 1
	}

	out := &Outcome{Matches: []Result{}}
	for i := range candidates {
		c := &candidates[i]
		if len(c.Embedding) != r.dim {
			r.skip(out, c)
			continue
		}

		similarity, err := CosineSimilarity(query, c.Embedding)
		if err != nil {
			r.skip(out, c)
			continue
		}
		r.appendIfQualified(out, c, similarity, threshold)
	}

	finalizeMatches(out, maxResults)
	out.ElapsedMS = time.Since(start).Milliseconds()
	return out, nil
}

// skip records a candidate excluded for a malformed embedding.
func (r *Ranker) skip(out *Outcome, c *Candidate) {
	r.log.Warn("skipping candidate with wrong embedding dim",
		slog.String("face_embedding_id", c.FaceEmbeddingID),
		slog.Int("dim", len(c.Embedding)),
		slog.Int("want", r.dim),
	)
	out.Skipped = append(out.Skipped, Skipped{
		FaceEmbeddingID: c.FaceEmbeddingID,
		Reason:          SkipReasonDimension,
	})
}

// appendIfQualified applies the tier and threshold filters and appends a
// result for the candidate when both pass.
func (r *Ranker) appendIfQualified(out *Outcome, c *Candidate, similarity, threshold float64) {
	tier := ClassifyTier(similarity, r.thresholds)
	if tier == TierRejected || similarity < threshold {
		return
	}
	out.Matches = append(out.Matches, Result{
		FaceEmbeddingID: c.FaceEmbeddingID,
		PersonID:        c.PersonID,
		CaseID:          c.CaseID,
		Similarity:      roundSimilarity(similarity),
		ConfidenceTier:  tier,
	})
}

// finalizeMatches sorts matches by similarity descending and truncates to
// maxResults. The sort is stable, so equal similarities keep their order
// of first appearance among the candidates.
func finalizeMatches(out *Outcome, maxResults int) {
	sort.SliceStable(out.Matches, func(i, j int) bool {
		return out.Matches[i].Similarity > out.Matches[j].Similarity
	})
	if len(out.Matches) > maxResults {
		out.Matches = out.Matches[:maxResults]
	}
}

// roundSimilarity rounds to 6 decimal places for the response payload.
func roundSimilarity(s float64) float64 {
	return math.Round(s*1e6) / 1e6
}

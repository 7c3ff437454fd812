package match

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// batchChunkSize is the number of candidate rows scored per goroutine in
// RankBatch. Chunks write disjoint ranges of the similarity slice, so the
// output is deterministic regardless of scheduling.
const batchChunkSize = 256

// RankBatch is the bulk variant of Rank for large candidate sets. It
// computes every similarity through BatchCosineSimilarity, chunked across
// goroutines, before filtering, sorting, and truncating. Given identical
// inputs it returns the same ranked set as Rank, with similarities equal
// within floating tolerance.
func (r *Ranker) RankBatch(query []float32, candidates []Candidate, threshold float64, maxResults int) (*Outcome, error) {
	start := time.Now()

	if len(query) != r.dim {
		return nil, newDimensionError(r.dim, len(query))
	}
	if maxResults < 1 {
		maxResults = 1
	}

	out := &Outcome{Matches: []Result{}}
	eligible := make([]*Candidate, 0, len(candidates))
	rows := make([][]float32, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if len(c.Embedding) != r.dim {
			r.skip(out, c)
			continue
		}
		eligible = append(eligible, c)
		rows = append(rows, c.Embedding)
	}

	sims, err := r.batchSimilarities(query, rows)
	if err != nil {
		return nil, err
	}

	for i, c := range eligible {
		r.appendIfQualified(out, c, sims[i], threshold)
	}

	finalizeMatches(out, maxResults)
	out.ElapsedMS = time.Since(start).Milliseconds()
	return out, nil
}

// batchSimilarities scores all rows against the query, splitting large row
// sets into fixed-size chunks scored concurrently.
func (r *Ranker) batchSimilarities(query []float32, rows [][]float32) ([]float64, error) {
	if len(rows) <= batchChunkSize {
		return BatchCosineSimilarity(query, rows)
	}

	sims := make([]float64, len(rows))
	var g errgroup.Group
	for lo := 0; lo < len(rows); lo += batchChunkSize {
		lo := lo
		hi := min(lo+batchChunkSize, len(rows))
		g.Go(func() error {
			chunk, err := BatchCosineSimilarity(query, rows[lo:hi])
			if err != nil {
				return err
			}
			copy(sims[lo:hi], chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sims, nil
}

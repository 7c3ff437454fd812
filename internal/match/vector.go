package match

import "math"

// Normalize returns an L2-normalized copy of v. A zero-norm vector is
// returned as an unchanged copy; callers must not assume the result has
// unit norm.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(out, v)
		return out
	}
	inv := 1 / norm
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, accumulating in float64 to limit rounding error. If either
// vector has zero norm the result is 0 by definition. The result is
// clamped to [0, 1]: negative cosine means "no match" for faces and is
// never surfaced.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, newDimensionError(len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

// BatchCosineSimilarity computes the cosine similarity of query against
// every candidate row, normalizing the query once. Rows with zero norm
// yield similarity 0; every value is clamped to [0, 1]. Results match
// per-row CosineSimilarity calls within floating tolerance.
//
// Every row must have the same length as the query; a mismatched row
// yields a DimensionError identifying the offending length.
func BatchCosineSimilarity(query []float32, candidates [][]float32) ([]float64, error) {
	sims := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return sims, nil
	}

	for _, row := range candidates {
		if len(row) != len(query) {
			return nil, newDimensionError(len(query), len(row))
		}
	}

	q := Normalize(query)
	for i, row := range candidates {
		sims[i] = rowSimilarity(q, row)
	}
	return sims, nil
}

// rowSimilarity computes the clamped cosine similarity of one candidate
// row against an already-normalized query.
func rowSimilarity(normalizedQuery []float32, row []float32) float64 {
	var dot, norm float64
	for i := range row {
		dot += float64(normalizedQuery[i]) * float64(row[i])
		norm += float64(row[i]) * float64(row[i])
	}
	if norm == 0 {
		return 0
	}
	return clamp01(dot / math.Sqrt(norm))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

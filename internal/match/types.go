package match

// Candidate is one enrolled face identity to compare a query against.
// The engine only reads it for the duration of one call; ownership stays
// with the caller.
type Candidate struct {
	FaceEmbeddingID string    `json:"face_embedding_id"`
	PersonID        string    `json:"person_id"`
	CaseID          string    `json:"case_id"`
	Embedding       []float32 `json:"embedding"`
}

// Result is a single qualifying match, ordered by similarity descending
// in the ranked output.
type Result struct {
	FaceEmbeddingID string  `json:"face_embedding_id"`
	PersonID        string  `json:"person_id"`
	CaseID          string  `json:"case_id"`
	Similarity      float64 `json:"similarity"`
	ConfidenceTier  Tier    `json:"confidence_tier"`
}

// Skip reasons for candidates excluded from a ranking without failing the batch.
const (
	SkipReasonDimension = "dimension_mismatch"
)

// Skipped records a candidate that was dropped from a ranking. Skips are
// surfaced to the caller alongside results instead of vanishing into a log.
type Skipped struct {
	FaceEmbeddingID string `json:"face_embedding_id"`
	Reason          string `json:"reason"`
}

// Outcome is the full result of one ranking invocation.
type Outcome struct {
	Matches []Result
	Skipped []Skipped
	// ElapsedMS is wall-clock processing time in integer milliseconds.
	ElapsedMS int64
}

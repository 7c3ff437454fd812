package match

import "fmt"

// Tier is the discrete confidence classification of a similarity score.
type Tier string

// Confidence tiers, ordered from strongest to weakest.
const (
	TierHigh     Tier = "HIGH"
	TierMedium   Tier = "MEDIUM"
	TierLow      Tier = "LOW"
	TierRejected Tier = "REJECTED"
)

// Thresholds holds the tier cutoffs for classifying a similarity score.
// The bands must be monotonically non-increasing: High >= Medium >= Low >= Reject.
type Thresholds struct {
	High   float64
	Medium float64
	Low    float64
	Reject float64
}

// Validate checks that the cutoffs are in [0, 1] and monotonic. Thresholds
// are process-wide, so this is meant to run once at configuration load
// rather than per call.
func (t Thresholds) Validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"high", t.High},
		{"medium", t.Medium},
		{"low", t.Low},
		{"reject", t.Reject},
	} {
		if c.value < 0 || c.value > 1 {
			return fmt.Errorf("threshold %s must be in [0, 1], got %g", c.name, c.value)
		}
	}
	if t.High < t.Medium || t.Medium < t.Low || t.Low < t.Reject {
		return fmt.Errorf("thresholds must satisfy high >= medium >= low >= reject, got %g/%g/%g/%g",
			t.High, t.Medium, t.Low, t.Reject)
	}
	return nil
}

// ClassifyTier maps a similarity score to a confidence tier. Checks run in
// strict descending order and the first match wins, so overlapping bands
// from a misconfigured Thresholds still classify deterministically. Band
// boundaries are inclusive at the lower bound.
func ClassifyTier(similarity float64, t Thresholds) Tier {
	switch {
	case similarity >= t.High:
		return TierHigh
	case similarity >= t.Medium:
		return TierMedium
	case similarity >= t.Low:
		return TierLow
	default:
		return TierRejected
	}
}

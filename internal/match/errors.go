package match

import "fmt"

// DimensionError reports an embedding whose length does not match the
// expected dimensionality. For a query vector it is fatal to the whole
// call; for an individual candidate it only causes that candidate to be
// skipped.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding must be %d-dim, got %d", e.Want, e.Got)
}

// newDimensionError builds a DimensionError for the given expectation.
func newDimensionError(want, got int) *DimensionError {
	return &DimensionError{Want: want, Got: got}
}

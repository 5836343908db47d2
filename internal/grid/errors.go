package grid

import "errors"

// Sentinel errors for malformed input grids, matching the
// katalvlaran-lvlath/gridgraph convention of package-level error values
// returned from the constructor rather than panics.
var (
	ErrEmpty          = errors.New("grid: empty input")
	ErrNonRectangular = errors.New("grid: rows have differing lengths")
)

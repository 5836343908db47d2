package tiled

import "errors"

var (
	// ErrMalformedProblem is returned by New/Options.Validate for
	// out-of-range inputs (base-spec §7): no tiles, a tile image of the
	// wrong size or image count, an adjacency tile index out of range, or
	// non-positive output dimensions.
	ErrMalformedProblem = errors.New("tiled: malformed problem")

	// ErrBoundaryInfeasible is returned when the reducer's initial
	// constraints alone empty a cell (base-spec §4.7). The tiled model
	// has none today, but the sentinel is kept alongside overlapping's
	// so solver.Model implementations share one error vocabulary.
	ErrBoundaryInfeasible = errors.New("tiled: boundary constraints infeasible")
)

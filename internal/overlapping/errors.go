package overlapping

import "errors"

var (
	// ErrMalformedProblem is returned by New/Options.Validate for
	// out-of-range inputs (base-spec §7).
	ErrMalformedProblem = errors.New("overlapping: malformed problem")

	// ErrBoundaryInfeasible is returned when the ground constraint's
	// initial propagation alone empties a cell (base-spec §4.7).
	ErrBoundaryInfeasible = errors.New("overlapping: boundary constraints infeasible")
)

// Package solver implements the generic WFC observation loop of
// base-spec §4.4: pick the minimum-entropy cell, collapse it by weighted
// choice, propagate, and repeat until success or contradiction. It is the
// generalization of the teacher's Solver.Step — which hard-codes a single
// tile set and a uint64 domain — into a model-parameterized driver, per
// base-spec §9 ("the driver is parameterized by model only via its
// initial constraints and its wave-to-output decoder").
package solver

import (
	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/wave"
)

// Model is the small capability object base-spec §9 describes as an
// alternative to tagged variants: the two operations a reducer
// (overlapping or tiled) must supply to plug into the generic driver.
type Model[Output any] interface {
	// ApplyInitialConstraints runs the model's boundary/ground/
	// initial-rule removals against wv and pr, then propagates to
	// fixpoint. Called once, before the first observation.
	ApplyInitialConstraints(wv *wave.Wave, pr *propagate.Propagator) error

	// Decode turns a (possibly uncollapsed, on the contradiction path)
	// wave into the model's output artifact.
	Decode(wv *wave.Wave) Output
}

// Observer is an optional, side-effect-free-from-the-core's-perspective
// hook (SPEC_FULL §C.3) a caller can supply to watch the solve without
// the core taking on any logging or I/O dependency itself.
type Observer interface {
	OnObserve(y, x, pattern int)
	OnContradiction(y, x int)
}

// State mirrors base-spec §4.4's driver state machine.
type State int

const (
	Running State = iota
	Success
	Failure
)

package solver

import (
	"errors"
	"math/rand"

	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/wave"
)

// ErrContradiction is returned by Run when propagation (initial or
// driven by an observation) empties some cell's possibility set.
// Callers — per base-spec §7 — retry with a fresh seed rather than
// backtrack.
var ErrContradiction = errors.New("solver: contradiction")

// Driver runs the generic observation loop of base-spec §4.4 over a Wave,
// a Propagator, and a Model's initial constraints/decoder.
type Driver[Output any] struct {
	wv    *wave.Wave
	pr    *propagate.Propagator
	rng   *rand.Rand
	model Model[Output]
	obs   Observer

	state State
}

// New constructs a driver. rng must be the same RNG used to build wv
// (base-spec §5: "[entropy jitter and weighted choice] must consume from
// the same stream in a fixed, documented order").
func New[Output any](wv *wave.Wave, pr *propagate.Propagator, rng *rand.Rand, model Model[Output], obs Observer) *Driver[Output] {
	return &Driver[Output]{wv: wv, pr: pr, rng: rng, model: model, obs: obs, state: Running}
}

// Run applies the model's initial constraints, then iterates Observe
// until the driver reaches Success or Failure (base-spec §4.4 "run").
// On success it returns the model's decode of the final wave; on failure
// it returns the zero Output and ErrContradiction (or a wrapped
// contradiction raised by the initial constraints themselves).
func (d *Driver[Output]) Run() (Output, error) {
	var zero Output
	if err := d.model.ApplyInitialConstraints(d.wv, d.pr); err != nil {
		return zero, err
	}
	if d.wv.IsContradicted() {
		d.state = Failure
		return zero, ErrContradiction
	}

	for d.state == Running {
		d.Observe()
	}
	if d.state == Failure {
		return zero, ErrContradiction
	}
	return d.model.Decode(d.wv), nil
}

// Observe performs one iteration of base-spec §4.4's observe():
//  1. select the minimum-entropy cell, or transition to Success if none remain;
//  2. pick a pattern for it by weighted-uniform sampling over remaining patterns;
//  3. remove every other remaining pattern from that cell, enqueuing each removal;
//  4. propagate to fixpoint, transitioning to Failure on contradiction.
func (d *Driver[Output]) Observe() {
	y, x, ok := d.wv.MinEntropyCell()
	if !ok {
		d.state = Success
		return
	}

	chosen := d.weightedPick(y, x)
	if chosen < 0 {
		d.state = Failure
		return
	}

	d.wv.PossiblePatterns(y, x).Each(func(p int) bool {
		if p != chosen {
			d.wv.Remove(y, x, p)
			d.pr.Add(y, x, p)
		}
		return true
	})
	if d.obs != nil {
		d.obs.OnObserve(y, x, chosen)
	}

	d.pr.Propagate(d.wv)
	if d.wv.IsContradicted() {
		if d.obs != nil {
			d.obs.OnContradiction(y, x)
		}
		d.state = Failure
		return
	}
	d.state = Running
}

// weightedPick chooses one pattern still possible at (y, x) by weighted
// uniform sampling over w[p] (base-spec §4.4 step 2), consuming the next
// draw from the shared RNG stream. Returns -1 if the cell has no
// remaining patterns with positive weight (should not occur given the
// wave invariants, but guards against malformed weight tables).
func (d *Driver[Output]) weightedPick(y, x int) int {
	total := 0.0
	patterns := d.wv.PossiblePatterns(y, x)
	patterns.Each(func(p int) bool {
		total += d.wv.Weight(p)
		return true
	})
	if total <= 0 {
		return -1
	}

	r := d.rng.Float64() * total
	chosen := -1
	patterns.Each(func(p int) bool {
		r -= d.wv.Weight(p)
		if r <= 0 {
			chosen = p
			return false
		}
		chosen = p
		return true
	})
	return chosen
}

// State returns the driver's current state.
func (d *Driver[Output]) State() State { return d.state }

// Wave exposes the driver's underlying wave for read-only introspection —
// the CLI's preview window (SPEC_FULL §C.5) renders per-cell entropy
// between observations, which requires watching the wave mid-solve rather
// than only seeing Run's final decoded output.
func (d *Driver[Output]) Wave() *wave.Wave { return d.wv }

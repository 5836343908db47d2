package overlapping

import (
	"math/rand"

	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/solver"
	"github.com/kestrelwave/wfc/internal/wave"
)

// Builder adapts a compiled Model into solver.Builder so the same
// compiled pattern alphabet and compatibility table can be reused across
// the bounded-retry loop's attempts (SPEC_FULL §C.2) without
// recompiling the problem on every seed — only the Wave/Propagator
// (which base-spec §5 says are single-use) are rebuilt per attempt.
type Builder struct {
	Model *Model
	Obs   solver.Observer
}

// Build implements solver.Builder.
func (b *Builder) Build(seed uint64) (*solver.Driver[Output], error) {
	rng := rand.New(rand.NewSource(int64(seed)))
	wv := wave.New(b.Model.opts.OutputHeight, b.Model.opts.OutputWidth, b.Model.Weights(), rng)
	pr := propagate.New(wv, b.Model.opts.PeriodicOutput, b.Model.Compat())
	return solver.New[Output](wv, pr, rng, b.Model, b.Obs), nil
}

package tiled

import (
	"math/rand"

	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/solver"
	"github.com/kestrelwave/wfc/internal/wave"
)

// Builder adapts a compiled Model into solver.Builder (see
// overlapping.Builder's doc comment for why this is split from Model:
// the compiled alphabet/compatibility table is reused across the
// bounded-retry loop's attempts; only the Wave/Propagator are rebuilt).
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

package propagate_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/wave"
)

// buildSameCompat builds a compatibility table over n patterns where each
// pattern only tolerates itself as a neighbor in every direction (Right
// and Down are added directly; Left and Up follow from Compat.Add).
func buildSameCompat(n int) wave.Compat {
	c := wave.NewCompat(n)
	for p := 0; p < n; p++ {
		c.Add(p, wave.Right, p)
		c.Add(p, wave.Down, p)
	}
	return c
}

func TestPropagateRemovesUnsupportedNeighbor(t *testing.T) {
	compat := buildSameCompat(2)
	rng := rand.New(rand.NewSource(1))
	wv := wave.New(1, 2, []float64{1, 1}, rng)
	pr := propagate.New(wv, false, compat)

	// Removing pattern 1 from (0,0) leaves only pattern 0, which requires
	// pattern 0 at its Right neighbor (0,1); pattern 1 there must vanish.
	wv.Remove(0, 0, 1)
	pr.Add(0, 0, 1)
	pr.Propagate(wv)

	require.False(t, wv.Possible(0, 1, 1))
	require.True(t, wv.Possible(0, 1, 0))
	require.False(t, wv.IsContradicted())
}

func TestPropagateContradictionOnIncompatibleForcedNeighbor(t *testing.T) {
	compat := buildSameCompat(2)
	rng := rand.New(rand.NewSource(1))
	wv := wave.New(1, 2, []float64{1, 1}, rng)
	pr := propagate.New(wv, false, compat)

	wv.Remove(0, 0, 1) // force pattern 0 at (0,0)
	pr.Add(0, 0, 1)
	wv.Remove(0, 1, 0) // force pattern 1 at (0,1): incompatible with (0,0)
	pr.Add(0, 1, 0)
	pr.Propagate(wv)

	require.True(t, wv.IsContradicted())
}

func TestBoundaryDoesNotRemovePatternsAtEdgeCells(t *testing.T) {
	// Pattern 0 requires a Right neighbor of pattern 0; in a 1x1 grid
	// every direction is out-of-bounds, so there is never a neighbor to
	// decrement this requirement. That must not itself ban the pattern —
	// only a requirement that genuinely drops to zero via propagation
	// from a real neighbor does.
	compat := wave.NewCompat(2)
	compat.Add(0, wave.Right, 0)

	rng := rand.New(rand.NewSource(1))
	wv := wave.New(1, 1, []float64{1, 1}, rng)
	pr := propagate.New(wv, false, compat)

	require.True(t, wv.Possible(0, 0, 0))
	require.True(t, wv.Possible(0, 0, 1))
	require.False(t, wv.IsContradicted())
	require.Equal(t, 0, pr.CompatCount(0, 0, 0, wave.Right))
}

func TestInteriorPatternWithNoSupportIsRemovedAtConstruction(t *testing.T) {
	// Pattern 1 has no Right-compatible neighbor at all (no rule lists it
	// as a Left-neighbor of anything), so at an interior cell — where a
	// real neighbor exists to have actually failed to support it — it
	// must be banned immediately, unlike the boundary case above.
	compat := wave.NewCompat(2)
	compat.Add(0, wave.Right, 0)

	rng := rand.New(rand.NewSource(1))
	wv := wave.New(1, 2, []float64{1, 1}, rng)
	_ = propagate.New(wv, false, compat)

	require.True(t, wv.Possible(0, 0, 0))
	require.False(t, wv.Possible(0, 0, 1))
}

func TestCounterConsistencyAfterFixpoint(t *testing.T) {
	// Property test (base-spec §8 #1): after propagation settles, for
	// every still-possible (y,x,p), compatCount[y][x][p][d] equals the
	// number of remaining neighbor patterns compatible with p in d.
	compat := wave.NewCompat(3)
	compat.Add(0, wave.Right, 0)
	compat.Add(0, wave.Right, 1)
	compat.Add(1, wave.Right, 1)
	compat.Add(2, wave.Right, 2)

	rng := rand.New(rand.NewSource(5))
	wv := wave.New(1, 3, []float64{1, 1, 1}, rng)
	pr := propagate.New(wv, false, compat)

	wv.Remove(0, 2, 0)
	pr.Add(0, 2, 0)
	wv.Remove(0, 2, 1)
	pr.Add(0, 2, 1)
	pr.Propagate(wv)
	require.False(t, wv.IsContradicted())

	for y := 0; y < wv.Height(); y++ {
		for x := 0; x < wv.Width(); x++ {
			for p := 0; p < wv.NumPatterns(); p++ {
				if !wv.Possible(y, x, p) {
					continue
				}
				for d := wave.Dir(0); d < wave.NumDirs; d++ {
					// compatCount[y][x][p][d] is only ever decremented by an
					// event arriving from (y,x)'s Opposite(d) neighbor, so it
					// tracks support from THAT neighbor using the patterns p
					// tolerates in the Opposite(d) direction.
					opp := wave.Opposite(d)
					dx, dy := wave.Delta(opp)
					ny, nx := y+dy, x+dx
					want := 0
					if ny >= 0 && ny < wv.Height() && nx >= 0 && nx < wv.Width() {
						for _, q := range compat.Neighbors(p, opp) {
							if wv.Possible(ny, nx, q) {
								want++
							}
						}
					}
					require.Equal(t, want, pr.CompatCount(y, x, p, d), "y=%d x=%d p=%d d=%d", y, x, p, d)
				}
			}
		}
	}
}

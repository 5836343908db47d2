package propagate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwave/wfc/internal/wave"
)

// drainLIFO re-runs the exact same compatCount-decrement rule Propagate
// uses, but pops the most recently queued event instead of the oldest
// one. It is a white-box duplicate kept only to exercise base-spec §8
// property 4 (propagation confluence) against the public FIFO drain in
// TestPropagationReachesSameFixpointRegardlessOfDrainOrder below.
func drainLIFO(pr *Propagator, wv *wave.Wave) {
	for len(pr.queue) > 0 {
		last := len(pr.queue) - 1
		ev := pr.queue[last]
		pr.queue = pr.queue[:last]

		for d := wave.Dir(0); d < wave.NumDirs; d++ {
			ny, nx, ok := pr.neighbor(ev.y, ev.x, d)
			if !ok {
				continue
			}
			for _, q := range pr.compat.Neighbors(ev.p, d) {
				c := pr.getCount(ny, nx, q, d) - 1
				pr.setCount(ny, nx, q, d, c)
				if c == 0 && wv.Possible(ny, nx, q) {
					wv.Remove(ny, nx, q)
					if wv.IsContradicted() {
						pr.queue = nil
						return
					}
					pr.queue = append(pr.queue, event{ny, nx, q})
				}
			}
		}
	}
}

// TestPropagationReachesSameFixpointRegardlessOfDrainOrder is base-spec
// §8 property 4 (propagation confluence): the same initial removal
// events, against the same compatibility table, must settle to the same
// per-cell possibility sets whether the worklist is drained FIFO
// (Propagate's actual discipline) or LIFO (drainLIFO above). Uses the
// same 3-pattern/1x3 scenario as TestCounterConsistencyAfterFixpoint.
func TestPropagationReachesSameFixpointRegardlessOfDrainOrder(t *testing.T) {
	compat := wave.NewCompat(3)
	compat.Add(0, wave.Right, 0)
	compat.Add(0, wave.Right, 1)
	compat.Add(1, wave.Right, 1)
	compat.Add(2, wave.Right, 2)

	build := func() (*wave.Wave, *Propagator) {
		rng := rand.New(rand.NewSource(5))
		wv := wave.New(1, 3, []float64{1, 1, 1}, rng)
		pr := New(wv, false, compat)
		wv.Remove(0, 2, 0)
		pr.Add(0, 2, 0)
		wv.Remove(0, 2, 1)
		pr.Add(0, 2, 1)
		return wv, pr
	}

	fifoWave, fifoProp := build()
	fifoProp.Propagate(fifoWave)
	require.False(t, fifoWave.IsContradicted())

	lifoWave, lifoProp := build()
	drainLIFO(lifoProp, lifoWave)
	require.False(t, lifoWave.IsContradicted())

	for y := 0; y < fifoWave.Height(); y++ {
		for x := 0; x < fifoWave.Width(); x++ {
			for p := 0; p < fifoWave.NumPatterns(); p++ {
				require.Equal(t, fifoWave.Possible(y, x, p), lifoWave.Possible(y, x, p),
					"y=%d x=%d p=%d: FIFO and LIFO drains disagree", y, x, p)
			}
		}
	}
}

// Package wave implements the per-cell possibility bitsets and cached
// entropy/weight counters described in base-spec §3 and §4.2. It is the
// generalization of the teacher's Solver.Domains (a single uint64 bitmask
// per cell, counted with math/bits) to an arbitrary pattern alphabet size
// and to the weighted-Shannon-entropy bookkeeping the teacher's prototype
// never implemented (it only ever compared popcounts).
package wave

import (
	"errors"
	"math"
	"math/rand"

	"github.com/kestrelwave/wfc/internal/bitset"
)

// ErrContradiction names the condition IsContradicted reports: propagation
// emptied a cell's possibility set. No function in this package returns
// it; the driver reports contradictions as solver.ErrContradiction.
var ErrContradiction = errors.New("wave: contradiction: a cell has no remaining possibilities")

// entropyNoiseScale bounds the per-cell tie-break jitter added only for
// MinEntropyCell comparisons, never to the cached Entropy value itself
// (base-spec §3 invariant 4: an observed cell's entropy is exactly 0).
// Kept small enough that it can only ever break exact ties between cells
// whose real entropy is otherwise equal.
const entropyNoiseScale = 1e-6

// Wave is the H×W grid of per-cell pattern possibility sets.
type Wave struct {
	height, width int
	numPatterns   int

	weights []float64
	wLog    []float64 // weights[p] * ln(weights[p]), precomputed once

	possible  []*bitset.Set
	nPossible []int
	sumW      []float64
	sumWLog   []float64
	entropy   []float64
	noise     []float64 // per-cell tie-break jitter, drawn once at construction

	contradicted bool
}

// New builds a fully permissive wave (base-spec §4.2 "new"): every pattern
// is possible at every cell, and the running sums/entropy are initialized
// from weights. rng supplies the per-cell tie-break noise; per base-spec
// §5 this is the FIRST thing the shared RNG stream is asked for, before
// any observation draws a weighted pattern, so (seed, problem) -> result
// stays deterministic regardless of how many cells happen to tie later.
func New(height, width int, weights []float64, rng *rand.Rand) *Wave {
	if height <= 0 || width <= 0 {
		panic("wave: invalid dimensions")
	}
	p := len(weights)
	if p == 0 {
		panic("wave: empty pattern alphabet")
	}

	wLog := make([]float64, p)
	var totalW, totalWLog float64
	for i, w := range weights {
		if w <= 0 {
			panic("wave: pattern weights must be positive")
		}
		wLog[i] = w * math.Log(w)
		totalW += w
		totalWLog += wLog[i]
	}
	baseEntropy := math.Log(totalW) - totalWLog/totalW

	n := height * width
	wv := &Wave{
		height:      height,
		width:       width,
		numPatterns: p,
		weights:     weights,
		wLog:        wLog,
		possible:    make([]*bitset.Set, n),
		nPossible:   make([]int, n),
		sumW:        make([]float64, n),
		sumWLog:     make([]float64, n),
		entropy:     make([]float64, n),
		noise:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		wv.possible[i] = bitset.Full(p)
		wv.nPossible[i] = p
		wv.sumW[i] = totalW
		wv.sumWLog[i] = totalWLog
		wv.entropy[i] = baseEntropy
		wv.noise[i] = rng.Float64() * entropyNoiseScale
	}
	return wv
}

func (wv *Wave) idx(y, x int) int { return y*wv.width + x }

// Height returns the number of rows.
func (wv *Wave) Height() int { return wv.height }

// Width returns the number of columns.
func (wv *Wave) Width() int { return wv.width }

// NumPatterns returns the pattern alphabet size P.
func (wv *Wave) NumPatterns() int { return wv.numPatterns }

// Weight returns w[p].
func (wv *Wave) Weight(p int) float64 { return wv.weights[p] }

// Possible reports whether pattern p remains admissible at (y, x).
func (wv *Wave) Possible(y, x, p int) bool {
	return wv.possible[wv.idx(y, x)].Test(p)
}

// PossiblePatterns returns the bitset of remaining patterns at (y, x).
// Callers must not mutate the returned set.
func (wv *Wave) PossiblePatterns(y, x int) *bitset.Set {
	return wv.possible[wv.idx(y, x)]
}

// NPossible returns the count of remaining patterns at (y, x).
func (wv *Wave) NPossible(y, x int) int { return wv.nPossible[wv.idx(y, x)] }

// Entropy returns the cached weighted-Shannon entropy at (y, x):
// ln(sumW) - sumWLog/sumW, or exactly 0 once the cell is observed
// (base-spec §3 invariant 4).
func (wv *Wave) Entropy(y, x int) float64 { return wv.entropy[wv.idx(y, x)] }

// IsContradicted reports whether any cell's possibility set has emptied.
func (wv *Wave) IsContradicted() bool { return wv.contradicted }

// Remove sets possible[y][x][p] = false and updates the derived counters
// incrementally (base-spec §4.2). Precondition: possible[y][x][p] was
// true; violating it is a programmer error in the propagator/driver, not
// a reportable runtime condition, so it panics.
func (wv *Wave) Remove(y, x, p int) {
	i := wv.idx(y, x)
	if !wv.possible[i].Test(p) {
		panic("wave: Remove called on a pattern already excluded")
	}
	wv.possible[i].Clear(p)
	wv.nPossible[i]--
	wv.sumW[i] -= wv.weights[p]
	wv.sumWLog[i] -= wv.wLog[p]

	switch {
	case wv.nPossible[i] == 0:
		wv.contradicted = true
		wv.entropy[i] = 0
	case wv.nPossible[i] == 1:
		wv.entropy[i] = 0
	default:
		if wv.sumW[i] > 0 {
			wv.entropy[i] = math.Log(wv.sumW[i]) - wv.sumWLog[i]/wv.sumW[i]
		}
	}
}

// MinEntropyCell returns the (y, x) of the cell with the lowest entropy
// among cells with nPossible > 1, breaking ties with the per-cell
// construction-time noise (base-spec §4.2). ok is false when every cell
// is observed (nPossible == 1 everywhere), signaling the driver to
// transition to success.
func (wv *Wave) MinEntropyCell() (y, x int, ok bool) {
	best := -1
	bestScore := math.Inf(1)
	for i := 0; i < wv.height*wv.width; i++ {
		if wv.nPossible[i] <= 1 {
			continue
		}
		score := wv.entropy[i] + wv.noise[i]
		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best / wv.width, best % wv.width, true
}

// SumWeight returns sumW[y][x], exposed for property tests (base-spec §8
// property 2: sum consistency).
func (wv *Wave) SumWeight(y, x int) float64 { return wv.sumW[wv.idx(y, x)] }

// SumWeightLog returns sumWLog[y][x].
func (wv *Wave) SumWeightLog(y, x int) float64 { return wv.sumWLog[wv.idx(y, x)] }

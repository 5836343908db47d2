// Package propagate implements the arc-consistency engine of base-spec
// §4.3: given a removal event, eliminate now-unsupported patterns in
// neighboring cells until fixpoint. It generalizes the teacher's
// propagateFrom/allowedByNeighborRule (a single bitmask AND per neighbor,
// which cannot express the per-pattern support counting the spec
// requires) to the compatCount-counter algorithm of base-spec §3/§4.3:
// each (cell, pattern, direction) tracks how many patterns are still
// possible in that neighbor that would support it, and a pattern is
// removed only once that count reaches zero.
package propagate

import (
	"github.com/kestrelwave/wfc/internal/wave"
)

// Propagator is the arc-consistency engine over a Compat table.
type Propagator struct {
	height, width int
	periodic      bool
	compat        wave.Compat

	// compatCount[y][x][p][d]: number of patterns still possible in the
	// neighbor of (y,x) in direction d that support p. Flattened as
	// ((y*width+x)*numPatterns+p)*NumDirs + int(d).
	compatCount []int32

	queue []event
}

type event struct {
	y, x, p int
}

// New initializes the propagator's compatCount counters (base-spec §4.3):
// compatCount[y][x][p][d] = |C[p][opposite(d)]| for every interior cell.
// For boundary cells under non-periodic mode, a slot d whose supporting
// neighbor (the Opposite(d) neighbor) lies outside the grid stores a 0
// sentinel instead (there is no neighbor left to ever
// decrement it), which is exempted from the contradiction check rather
// than treated as exhausted support — only a pattern whose count reaches
// 0 from its real, finite neighbor-support set is removed.
func New(wv *wave.Wave, periodic bool, compat wave.Compat) *Propagator {
	h, w, p := wv.Height(), wv.Width(), wv.NumPatterns()
	pr := &Propagator{
		height:      h,
		width:       w,
		periodic:    periodic,
		compat:      compat,
		compatCount: make([]int32, h*w*p*wave.NumDirs),
	}

	baseCounts := make([]int32, p*wave.NumDirs)
	for pat := 0; pat < p; pat++ {
		for d := wave.Dir(0); d < wave.NumDirs; d++ {
			baseCounts[pat*wave.NumDirs+int(d)] = int32(len(compat.Neighbors(pat, wave.Opposite(d))))
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for pat := 0; pat < p; pat++ {
				for d := wave.Dir(0); d < wave.NumDirs; d++ {
					count := baseCounts[pat*wave.NumDirs+int(d)]
					boundary := false
					if !periodic {
						// compatCount[y][x][p][d] is only ever decremented by
						// an event arriving from (y,x)'s Opposite(d) neighbor
						// (Propagate reaches (y,x) by walking d from that
						// neighbor), so it is the Opposite(d) neighbor's
						// existence that determines whether this slot is
						// real or a boundary sentinel — not the d-neighbor.
						if _, _, ok := pr.neighbor(y, x, wave.Opposite(d)); !ok {
							boundary = true
							count = 0
						}
					}
					pr.setCount(y, x, pat, d, count)
					// A boundary direction has no neighbor to decrement this
					// counter later, so its stored 0 is a sentinel, not a
					// real exhausted-support signal — removing on it would
					// ban every pattern from every edge cell. Only a count
					// that reached 0 from the pattern's actual, finite
					// neighbor-support set is a genuine contradiction.
					if !boundary && count == 0 && wv.Possible(y, x, pat) {
						wv.Remove(y, x, pat)
						pr.queue = append(pr.queue, event{y, x, pat})
					}
				}
			}
		}
	}
	return pr
}

func (pr *Propagator) countIndex(y, x, p int, d wave.Dir) int {
	return ((y*pr.width+x)*pr.compat.NumPatterns()+p)*wave.NumDirs + int(d)
}

func (pr *Propagator) getCount(y, x, p int, d wave.Dir) int32 {
	return pr.compatCount[pr.countIndex(y, x, p, d)]
}

func (pr *Propagator) setCount(y, x, p int, d wave.Dir, v int32) {
	pr.compatCount[pr.countIndex(y, x, p, d)] = v
}

// neighbor computes the neighbor of (y, x) in direction d, honoring
// periodicity. ok is false when the neighbor is out of bounds under
// non-periodic mode.
func (pr *Propagator) neighbor(y, x int, d wave.Dir) (ny, nx int, ok bool) {
	dx, dy := wave.Delta(d)
	ny, nx = y+dy, x+dx
	if pr.periodic {
		ny = ((ny % pr.height) + pr.height) % pr.height
		nx = ((nx % pr.width) + pr.width) % pr.width
		return ny, nx, true
	}
	if ny < 0 || ny >= pr.height || nx < 0 || nx >= pr.width {
		return 0, 0, false
	}
	return ny, nx, true
}

// Add enqueues a removal event for propagation. The caller must already
// have applied wv.Remove(y, x, p) before calling Add.
func (pr *Propagator) Add(y, x, p int) {
	pr.queue = append(pr.queue, event{y, x, p})
}

// Propagate drains the queue to fixpoint (base-spec §4.3). For each
// dequeued (y, x, p), and for each direction d, it finds the neighbor
// (y', x') and, for every pattern q compatible with p in direction d,
// decrements compatCount[y'][x'][q][d]; when that count reaches zero and
// q is still possible at (y', x'), q is removed and the removal is
// enqueued in turn. Each (cell, pattern) pair is removed — and thus
// enqueued — at most once, bounding the total work at
// O(H·W·P·NumDirs) (base-spec §4.3 termination guarantee).
func (pr *Propagator) Propagate(wv *wave.Wave) {
	head := 0
	for head < len(pr.queue) {
		ev := pr.queue[head]
		head++

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
	pr.queue = pr.queue[:0]
}

// CompatCount exposes compatCount[y][x][p][d] for the property tests of
// base-spec §8 (counter consistency).
func (pr *Propagator) CompatCount(y, x, p int, d wave.Dir) int {
	return int(pr.getCount(y, x, p, d))
}

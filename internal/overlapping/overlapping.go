// Package overlapping implements the overlapping-model reducer of
// base-spec §4.5: extract every N×N patch of an input image (plus its
// dihedral symmetry variants) as the propagator's pattern alphabet,
// derive cardinal-direction compatibility from pixel-exact overlap, apply
// the optional ground constraint, and decode a solved wave back into
// pixels.
//
// The teacher repo has no overlapping model at all — its wfc package
// only ever worked from a hand-authored socket table (the tiled model's
// shape). original_source/main.cpp only parses the <overlapping> XML
// attributes and hands them to OverlappingWFC, whose implementation
// (overlapping_wfc.hpp) isn't in the pack, so the pattern extraction,
// symmetry expansion, and ground handling below are built directly from
// base-spec §4.5's prose (see DESIGN.md), expressed in the teacher's
// idiom: plain loops, explicit bitmask/compat construction, no reflection.
package overlapping

import (
	"fmt"
	"image/color"

	"github.com/kestrelwave/wfc/internal/grid"
	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/wave"
)

// Options mirrors the overlapping-model inputs of base-spec §6, with the
// documented defaults of §6 already applied by internal/config before
// reaching this package.
type Options struct {
	N              int
	PeriodicInput  bool
	PeriodicOutput bool
	Symmetry       int // 1..8
	Ground         bool
	OutputHeight   int // Ho, in pattern cells
	OutputWidth    int // Wo, in pattern cells
}

// Validate checks the input-validation rules of base-spec §7 ("Malformed
// problem... Symmetry index out of range... Input-validation failure at
// reducer entry; solve is not attempted").
func (o Options) Validate() error {
	if o.N < 2 {
		return fmt.Errorf("%w: N must be >= 2, got %d", ErrMalformedProblem, o.N)
	}
	if o.Symmetry < 1 || o.Symmetry > 8 {
		return fmt.Errorf("%w: symmetry must be in [1,8], got %d", ErrMalformedProblem, o.Symmetry)
	}
	if o.OutputHeight <= 0 || o.OutputWidth <= 0 {
		return fmt.Errorf("%w: output dimensions must be positive, got %dx%d", ErrMalformedProblem, o.OutputHeight, o.OutputWidth)
	}
	return nil
}

// Output is the decoded pixel grid.
type Output = *grid.Array2D[color.RGBA]

// Model is the overlapping reducer's solver.Model implementation: it
// compiles an input image into the propagator's alphabet once, then
// answers ApplyInitialConstraints/Decode against whatever wave the
// driver hands it.
type Model struct {
	opts     Options
	patterns []*grid.Array2D[color.RGBA]
	weights  []float64
	compat   wave.Compat
	ground   int // pattern index, or -1 if Options.Ground is false
}

// New compiles an overlapping-model problem: pattern extraction (step 1),
// symmetry expansion and deduplication-by-weight (steps 2-3, base-spec
// §4.5), and cardinal compatibility construction.
func New(input *grid.Array2D[color.RGBA], opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.N > input.Height() || opts.N > input.Width() {
		return nil, fmt.Errorf("%w: N=%d larger than input %dx%d", ErrMalformedProblem, opts.N, input.Height(), input.Width())
	}

	patterns, weights, groundIdx := extractPatterns(input, opts)
	compat := buildCompat(patterns, opts)

	gi := -1
	if opts.Ground {
		gi = groundIdx
	}
	return &Model{opts: opts, patterns: patterns, weights: weights, compat: compat, ground: gi}, nil
}

// RepresentativeColor returns pattern p's top-left pixel, used by the
// CLI's debug preview (SPEC_FULL §C.5) to render a collapsed cell without
// depending on this package's internal pattern slice.
func (m *Model) RepresentativeColor(p int) color.RGBA { return m.patterns[p].Get(0, 0) }

// Weights returns the pattern weight table, for wiring into wave.New.
func (m *Model) Weights() []float64 { return m.weights }

// Compat returns the compiled compatibility table, for wiring into propagate.New.
func (m *Model) Compat() wave.Compat { return m.compat }

// extractPatterns implements base-spec §4.5 steps 1-3. It returns the
// deduplicated pattern list, a parallel weight-by-multiplicity slice, and
// the index of the pattern most frequently seen anchored at the input's
// bottom row (used only when Options.Ground is set).
func extractPatterns(input *grid.Array2D[color.RGBA], opts Options) ([]*grid.Array2D[color.RGBA], []float64, int) {
	hi, wi, n := input.Height(), input.Width(), opts.N

	type entry struct {
		pattern *grid.Array2D[color.RGBA]
		weight  float64
	}
	index := make(map[string]int)
	var entries []entry
	groundCount := make(map[string]int)

	yMax, xMax := hi, wi
	if !opts.PeriodicInput {
		yMax, xMax = hi-n+1, wi-n+1
	}

	for y := 0; y < yMax; y++ {
		for x := 0; x < xMax; x++ {
			patch := extractPatch(input, y, x, n, opts.PeriodicInput)
			variants := grid.Dihedral(patch, opts.Symmetry)
			for vi, variant := range variants {
				key := patternKey(variant)
				idx, seen := index[key]
				if !seen {
					idx = len(entries)
					index[key] = idx
					entries = append(entries, entry{pattern: variant, weight: 0})
				}
				entries[idx].weight++
				if vi == 0 && y == hi-n {
					groundCount[key]++
				}
			}
		}
	}

	patterns := make([]*grid.Array2D[color.RGBA], len(entries))
	weights := make([]float64, len(entries))
	for i, e := range entries {
		patterns[i] = e.pattern
		weights[i] = e.weight
	}

	groundIdx, bestCount := 0, -1
	for key, count := range groundCount {
		if count > bestCount {
			bestCount = count
			groundIdx = index[key]
		}
	}
	return patterns, weights, groundIdx
}

func extractPatch(input *grid.Array2D[color.RGBA], y, x, n int, periodic bool) *grid.Array2D[color.RGBA] {
	patch := grid.NewArray2D[color.RGBA](n, n)
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			var px color.RGBA
			if periodic {
				px = input.GetPeriodic(y+dy, x+dx)
			} else {
				px = input.Get(y+dy, x+dx)
			}
			patch.Set(dy, dx, px)
		}
	}
	return patch
}

func patternKey(p *grid.Array2D[color.RGBA]) string {
	buf := make([]byte, 0, p.Height()*p.Width()*4)
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			c := p.Get(y, x)
			buf = append(buf, c.R, c.G, c.B, c.A)
		}
	}
	return string(buf)
}

// buildCompat implements base-spec §4.5's compatibility construction,
// restricted (as the base spec notes the propagator itself does) to the
// 4 cardinal directions: two patterns overlap-match in direction Right
// when p's rightmost N-1 columns equal q's leftmost N-1 columns, and in
// Down when p's bottom N-1 rows equal q's top N-1 rows. Checking only
// Right and Down and adding both directions of the relation via
// wave.Compat.Add derives Left and Up automatically by the required
// symmetry invariant (base-spec §3).
func buildCompat(patterns []*grid.Array2D[color.RGBA], opts Options) wave.Compat {
	compat := wave.NewCompat(len(patterns))
	for p := range patterns {
		for q := range patterns {
			if overlapMatches(patterns[p], patterns[q], 1, 0) {
				compat.Add(p, wave.Right, q)
			}
			if overlapMatches(patterns[p], patterns[q], 0, 1) {
				compat.Add(p, wave.Down, q)
			}
		}
	}
	return compat
}

// overlapMatches reports whether placing pattern a at a cell and pattern
// b at its (dx, dy) neighbor is locally consistent: for every pixel of a
// whose shifted position also lands inside b, the two pixels must agree
// (base-spec §4.5's "overlap region... has pixel-exact agreement").
func overlapMatches(a, b *grid.Array2D[color.RGBA], dx, dy int) bool {
	n := a.Height()
	for y := 0; y < n; y++ {
		by := y - dy
		if by < 0 || by >= n {
			continue
		}
		for x := 0; x < n; x++ {
			bx := x - dx
			if bx < 0 || bx >= n {
				continue
			}
			if a.Get(y, x) != b.Get(by, bx) {
				return false
			}
		}
	}
	return true
}

// ApplyInitialConstraints implements base-spec §4.5's ground constraint:
// remove the ground pattern from every cell except the bottom output
// row, and remove every other pattern from every bottom-row cell, then
// propagate to fixpoint. A no-op when Options.Ground is false.
func (m *Model) ApplyInitialConstraints(wv *wave.Wave, pr *propagate.Propagator) error {
	if !m.opts.Ground {
		return nil
	}
	bottom := wv.Height() - 1
	for y := 0; y < wv.Height(); y++ {
		for x := 0; x < wv.Width(); x++ {
			if y == bottom {
				wv.PossiblePatterns(y, x).Each(func(p int) bool {
					if p != m.ground && wv.Possible(y, x, p) {
						wv.Remove(y, x, p)
						pr.Add(y, x, p)
					}
					return true
				})
			} else if wv.Possible(y, x, m.ground) {
				wv.Remove(y, x, m.ground)
				pr.Add(y, x, m.ground)
			}
		}
	}
	pr.Propagate(wv)
	if wv.IsContradicted() {
		return fmt.Errorf("%w: ground constraint", ErrBoundaryInfeasible)
	}
	return nil
}

// Decode implements base-spec §4.5's decode: each collapsed pattern cell
// contributes its top-left pixel; in non-periodic-output mode the final
// N-1 rows/columns additionally decode their full N×N patch so every
// output pixel is defined, growing the image to (Ho+N-1)×(Wo+N-1).
// Uncollapsed cells (the contradiction-path debug case) decode as the
// weighted average of their remaining patterns' top-left pixels.
func (m *Model) Decode(wv *wave.Wave) Output {
	n := m.opts.N
	ho, wo := wv.Height(), wv.Width()
	imgH, imgW := ho, wo
	if !m.opts.PeriodicOutput {
		imgH, imgW = ho+n-1, wo+n-1
	}
	out := grid.NewArray2D[color.RGBA](imgH, imgW)

	for y := 0; y < ho; y++ {
		for x := 0; x < wo; x++ {
			full := !m.opts.PeriodicOutput && (y >= ho-n+1 || x >= wo-n+1)
			px := m.decodeCellTopLeft(wv, y, x)
			out.Set(y, x, px)
			if full {
				pat := m.decodeCellPattern(wv, y, x)
				for dy := 0; dy < n; dy++ {
					for dx := 0; dx < n; dx++ {
						out.Set(y+dy, x+dx, pat.Get(dy, dx))
					}
				}
			}
		}
	}
	return out
}

func (m *Model) decodeCellTopLeft(wv *wave.Wave, y, x int) color.RGBA {
	if wv.NPossible(y, x) == 1 {
		p := singlePattern(wv, y, x)
		return m.patterns[p].Get(0, 0)
	}
	return m.weightedAverageTopLeft(wv, y, x)
}

func (m *Model) decodeCellPattern(wv *wave.Wave, y, x int) *grid.Array2D[color.RGBA] {
	if wv.NPossible(y, x) == 1 {
		return m.patterns[singlePattern(wv, y, x)]
	}
	// Contradiction-path debug decode: synthesize a patch from the
	// per-pixel weighted average so the caller still gets an image.
	n := m.opts.N
	avg := grid.NewArray2D[color.RGBA](n, n)
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			avg.Set(dy, dx, m.weightedAverageAt(wv, y, x, dy, dx))
		}
	}
	return avg
}

func (m *Model) weightedAverageTopLeft(wv *wave.Wave, y, x int) color.RGBA {
	return m.weightedAverageAt(wv, y, x, 0, 0)
}

func (m *Model) weightedAverageAt(wv *wave.Wave, y, x, dy, dx int) color.RGBA {
	var totalW, r, g, b, a float64
	wv.PossiblePatterns(y, x).Each(func(p int) bool {
		w := wv.Weight(p)
		px := m.patterns[p].Get(dy, dx)
		totalW += w
		r += w * float64(px.R)
		g += w * float64(px.G)
		b += w * float64(px.B)
		a += w * float64(px.A)
		return true
	})
	if totalW == 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8(r / totalW),
		G: uint8(g / totalW),
		B: uint8(b / totalW),
		A: uint8(a / totalW),
	}
}

func singlePattern(wv *wave.Wave, y, x int) int {
	result := -1
	wv.PossiblePatterns(y, x).Each(func(p int) bool {
		result = p
		return false
	})
	return result
}

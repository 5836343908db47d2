// Package tiled implements the tiled-model reducer of base-spec §4.6: it
// expands each input tile into its oriented variants per symmetry class,
// compiles a handful of caller-supplied left/right adjacency rules into the
// propagator's full 4-direction compatibility table by rotation and
// reflection, and decodes a solved wave into an assembled pixel grid.
//
// The teacher's wfc.TileSet/NewTileSetFromSockets (wavegen_variations/wfc/tile.go)
// is the closest the teacher gets to this: a fixed 4-socket compatibility
// table built by exact socket-value matching. This package keeps that
// shape — a per-(pattern,direction) compatibility table built once at
// construction time, consulted by the same propagator — but replaces the
// socket-matching derivation with the base spec's named-rule-plus-rotation
// derivation, since the teacher's sockets have no notion of a tile's
// symmetry class or of orientation at all.
package tiled

import (
	"fmt"
	"image/color"

	"github.com/kestrelwave/wfc/internal/grid"
	"github.com/kestrelwave/wfc/internal/propagate"
	"github.com/kestrelwave/wfc/internal/wave"
)

// Tile is one entry of the input palette (base-spec §6: "tiles[i] =
// (orientationImages[], symmetryClass, weight)"). Images must either hold
// exactly one T×T image (the reducer synthesizes the remaining
// orientations by rotation/reflection, base-spec §4.6 option (b)) or
// exactly Class.NumOrientations() images, one per orientation in
// collapse8's canonical order (option (a)).
type Tile struct {
	Name   string
	Class  Class
	Weight float64
	Images []*grid.Array2D[color.RGBA]
}

// Adjacency is one compiled left/right rule (base-spec §6: "adjacencies[j]
// = (iA, oA, iB, oB)"): tile TileA at orientation OA may be placed
// immediately left of tile TileB at orientation OB, in the canonical
// orientation (direction Right, base-spec §4.6). TileA/TileB index into
// the Tiles slice passed to New.
type Adjacency struct {
	TileA, OA int
	TileB, OB int
}

// Options mirrors the tiled-model inputs of base-spec §6 not already
// carried by Tiles/Adjacency, with internal/config's documented defaults
// (periodic=false) already applied.
type Options struct {
	OutputHeight   int // Ho, in tile cells
	OutputWidth    int // Wo, in tile cells
	PeriodicOutput bool
}

// Validate checks the input-validation rules of base-spec §7.
func (o Options) Validate() error {
	if o.OutputHeight <= 0 || o.OutputWidth <= 0 {
		return fmt.Errorf("%w: output dimensions must be positive, got %dx%d", ErrMalformedProblem, o.OutputHeight, o.OutputWidth)
	}
	return nil
}

// Output is the decoded pixel grid, (Ho·T)×(Wo·T) (base-spec §4.6 decode).
type Output = *grid.Array2D[color.RGBA]

// Model is the tiled reducer's solver.Model implementation.
type Model struct {
	opts Options

	tileSize int
	// patternImage[p] is the oriented image for pattern p.
	patternImage []*grid.Array2D[color.RGBA]
	weights      []float64
	compat       wave.Compat
}

// New compiles a tiled-model problem: orientation expansion (base-spec
// §4.6), adjacency compilation by rotation and reflection, and weight
// assignment (tileWeight / numOrientations per oriented pattern, so
// weights aggregate back to the input tile's weight).
//
// Adjacency rules referencing a tile index outside [0, len(tiles)) are
// rejected as malformed rather than silently dropped: base-spec §4.6's
// "rule against spurious rules" concerns rules naming a tile absent from
// the *subset* the config layer compiled (SPEC_FULL §C.6), a filtering
// step that happens before tiles/adjacencies ever reach this package — by
// the time an index reaches New, it must be valid.
func New(tiles []Tile, adjacencies []Adjacency, opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrMalformedProblem)
	}

	offsets := make([]int, len(tiles))
	total := 0
	for i, t := range tiles {
		offsets[i] = total
		total += t.Class.NumOrientations()
	}

	tileSize := 0
	patternImage := make([]*grid.Array2D[color.RGBA], total)
	weights := make([]float64, total)
	for i, t := range tiles {
		images, err := expandOrientations(t)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", t.Name, err)
		}
		if tileSize == 0 {
			tileSize = images[0].Height()
		}
		w := t.Weight / float64(len(images))
		for o, img := range images {
			if img.Height() != tileSize || img.Width() != tileSize {
				return nil, fmt.Errorf("%w: tile %q orientation %d size %dx%d, expected %dx%d",
					ErrMalformedProblem, t.Name, o, img.Height(), img.Width(), tileSize, tileSize)
			}
			p := offsets[i] + o
			patternImage[p] = img
			weights[p] = w
		}
	}

	compat := wave.NewCompat(total)
	for _, adj := range adjacencies {
		if adj.TileA < 0 || adj.TileA >= len(tiles) || adj.TileB < 0 || adj.TileB >= len(tiles) {
			return nil, fmt.Errorf("%w: adjacency references tile index out of range", ErrMalformedProblem)
		}
		addDerivedRules(compat, tiles, offsets, adj)
	}

	return &Model{
		opts:         opts,
		tileSize:     tileSize,
		patternImage: patternImage,
		weights:      weights,
		compat:       compat,
	}, nil
}

// expandOrientations implements base-spec §4.6's two tile-image sources:
// either the caller already supplied one image per orientation, or a
// single image is rotated/reflected into the rest via grid.Dihedral,
// picking out the variant that realizes each orientation via
// collapse8/repIndex (symmetry.go).
func expandOrientations(t Tile) ([]*grid.Array2D[color.RGBA], error) {
	n := t.Class.NumOrientations()
	switch len(t.Images) {
	case 0:
		return nil, fmt.Errorf("%w: no image supplied", ErrMalformedProblem)
	case 1:
		variants := grid.Dihedral(t.Images[0], 8)
		images := make([]*grid.Array2D[color.RGBA], n)
		for o := 0; o < n; o++ {
			images[o] = variants[repIndex(t.Class, o)]
		}
		return images, nil
	case n:
		return t.Images, nil
	default:
		return nil, fmt.Errorf("%w: class %v needs 1 or %d images, got %d", ErrMalformedProblem, t.Class, n, len(t.Images))
	}
}

// addDerivedRules implements base-spec §4.6's adjacency compilation: from
// one "tileA@oA left-of tileB@oB" rule it derives the same relation
// rotated into each of the 4 cardinal directions, and separately derives
// the mirror-image rule (reflecting the scene swaps which tile is to the
// left) rotated into all 4 directions too.
func addDerivedRules(compat wave.Compat, tiles []Tile, offsets []int, adj Adjacency) {
	pattern := func(tileIdx, o int) int { return offsets[tileIdx] + o }

	classA, classB := tiles[adj.TileA].Class, tiles[adj.TileB].Class
	oA, oB := adj.OA, adj.OB
	for k := 0; k < wave.NumDirs; k++ {
		compat.Add(pattern(adj.TileA, oA), wave.Dir(k), pattern(adj.TileB, oB))
		oA = RotateOrientation(classA, oA)
		oB = RotateOrientation(classB, oB)
	}

	rA, rB := ReflectOrientation(classA, adj.OA), ReflectOrientation(classB, adj.OB)
	for k := 0; k < wave.NumDirs; k++ {
		compat.Add(pattern(adj.TileB, rB), wave.Dir(k), pattern(adj.TileA, rA))
		rA = RotateOrientation(classA, rA)
		rB = RotateOrientation(classB, rB)
	}
}

// ApplyInitialConstraints is a no-op: the tiled model has no ground-style
// initial constraint (base-spec §4.6 names none), unlike the overlapping
// model's optional ground row.
func (m *Model) ApplyInitialConstraints(wv *wave.Wave, pr *propagate.Propagator) error {
	return nil
}

// Decode implements base-spec §4.6's decode: each collapsed cell's
// oriented-tile image is blitted at T×T granularity into the (Ho·T)×(Wo·T)
// output image. Uncollapsed cells (the contradiction-path debug case)
// decode as the per-pixel weighted average of remaining oriented images.
func (m *Model) Decode(wv *wave.Wave) Output {
	t := m.tileSize
	ho, wo := wv.Height(), wv.Width()
	out := grid.NewArray2D[color.RGBA](ho*t, wo*t)

	for y := 0; y < ho; y++ {
		for x := 0; x < wo; x++ {
			for dy := 0; dy < t; dy++ {
				for dx := 0; dx < t; dx++ {
					out.Set(y*t+dy, x*t+dx, m.decodePixel(wv, y, x, dy, dx))
				}
			}
		}
	}
	return out
}

func (m *Model) decodePixel(wv *wave.Wave, y, x, dy, dx int) color.RGBA {
	if wv.NPossible(y, x) == 1 {
		p := -1
		wv.PossiblePatterns(y, x).Each(func(i int) bool { p = i; return false })
		return m.patternImage[p].Get(dy, dx)
	}
	var totalW, r, g, b, a float64
	wv.PossiblePatterns(y, x).Each(func(p int) bool {
		w := wv.Weight(p)
		px := m.patternImage[p].Get(dy, dx)
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
	return color.RGBA{R: uint8(r / totalW), G: uint8(g / totalW), B: uint8(b / totalW), A: uint8(a / totalW)}
}

// RepresentativeColor returns the mean pixel color of pattern p's oriented
// tile image, used by the CLI's debug preview (SPEC_FULL §C.5).
func (m *Model) RepresentativeColor(p int) color.RGBA {
	img := m.patternImage[p]
	var r, g, b, a, n float64
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			px := img.Get(y, x)
			r += float64(px.R)
			g += float64(px.G)
			b += float64(px.B)
			a += float64(px.A)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
}

// Weights returns the pattern weight table, for wiring into wave.New.
func (m *Model) Weights() []float64 { return m.weights }

// Compat returns the compiled compatibility table, for wiring into propagate.New.
func (m *Model) Compat() wave.Compat { return m.compat }

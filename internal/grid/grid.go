// Package grid provides the fixed-size 2D array primitive the overlapping
// and tiled reducers build patterns and output images on: indexed access,
// periodic (toroidal) neighbor lookup, and the dihedral transforms
// (90° rotation and vertical-axis reflection) used to expand a single
// sample patch or tile image into its symmetry variants.
//
// Style grounded on katalvlaran-lvlath/gridgraph (rectangular validation,
// deep-copy-on-construct, InBounds helper) generalized from [][]int to a
// generic element type.
package grid

import "fmt"

// Array2D is a fixed-size H×W grid of T, stored row-major.
type Array2D[T any] struct {
	data   []T
	height int
	width  int
}

// NewArray2D constructs an H×W grid filled with the zero value of T.
// Complexity: O(H×W).
func NewArray2D[T any](height, width int) *Array2D[T] {
	if height <= 0 || width <= 0 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", height, width))
	}
	return &Array2D[T]{data: make([]T, height*width), height: height, width: width}
}

// FromRows builds an Array2D from a non-empty, rectangular slice of rows.
// Returns ErrEmpty if rows has no rows or no columns, ErrNonRectangular if
// row lengths differ.
func FromRows[T any](rows [][]T) (*Array2D[T], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	h, w := len(rows), len(rows[0])
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	a := NewArray2D[T](h, w)
	for y := 0; y < h; y++ {
		copy(a.data[y*w:(y+1)*w], rows[y])
	}
	return a, nil
}

// Height returns the number of rows.
func (a *Array2D[T]) Height() int { return a.height }

// Width returns the number of columns.
func (a *Array2D[T]) Width() int { return a.width }

// InBounds reports whether (y, x) lies within the grid.
func (a *Array2D[T]) InBounds(y, x int) bool {
	return y >= 0 && y < a.height && x >= 0 && x < a.width
}

// Get returns the value at (y, x). Coordinates are not checked one by one:
// only a position whose row-major index falls outside the backing slice
// panics. Callers that need periodic wraparound must use GetPeriodic or
// wrap coordinates first.
func (a *Array2D[T]) Get(y, x int) T {
	return a.data[y*a.width+x]
}

// Set writes the value at (y, x).
func (a *Array2D[T]) Set(y, x int, v T) {
	a.data[y*a.width+x] = v
}

// GetPeriodic returns the value at (y, x) after wrapping both coordinates
// modulo the grid dimensions, matching the toroidal-indexing convention of
// base-spec §4.1: (y+dy, x+dx) maps to ((y+dy) mod H, (x+dx) mod W).
func (a *Array2D[T]) GetPeriodic(y, x int) T {
	return a.Get(wrap(y, a.height), wrap(x, a.width))
}

func wrap(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// Rotate90 returns a new grid rotated 90° clockwise: the result has
// Width()==a.Height() and Height()==a.Width(). Used to generate the
// rotation variants of an overlapping-model patch or a tiled-model tile
// image for symmetry classes that include 90° rotations.
func (a *Array2D[T]) Rotate90() *Array2D[T] {
	out := NewArray2D[T](a.width, a.height)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			out.Set(x, a.height-1-y, a.Get(y, x))
		}
	}
	return out
}

// ReflectX returns a new grid reflected about the vertical axis (columns
// reversed, rows unchanged), the second generator — together with
// Rotate90 — of the 8 dihedral variants required by base-spec §4.1/§4.5.
func (a *Array2D[T]) ReflectX() *Array2D[T] {
	out := NewArray2D[T](a.height, a.width)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			out.Set(y, a.width-1-x, a.Get(y, x))
		}
	}
	return out
}

// Equal reports whether two grids have identical dimensions and, for every
// cell, equal values under eq.
func Equal[T any](a, b *Array2D[T], eq func(x, y T) bool) bool {
	if a.height != b.height || a.width != b.width {
		return false
	}
	for i := range a.data {
		if !eq(a.data[i], b.data[i]) {
			return false
		}
	}
	return true
}

// Dihedral returns the first n (1..8) variants of a in the canonical
// dihedral-group enumeration order used by base-spec §4.5 step 2:
// identity, rot90, rot180, rot270, reflect, reflect+rot90, reflect+rot180,
// reflect+rot270.
func Dihedral[T any](a *Array2D[T], n int) []*Array2D[T] {
	if n < 1 || n > 8 {
		panic(fmt.Sprintf("grid: symmetry count %d out of range [1,8]", n))
	}
	variants := make([]*Array2D[T], 0, n)
	cur := a
	for i := 0; i < 4 && len(variants) < n; i++ {
		variants = append(variants, cur)
		if len(variants) < n {
			cur = cur.Rotate90()
		}
	}
	if len(variants) < n {
		cur = a.ReflectX()
		for i := 0; i < 4 && len(variants) < n; i++ {
			variants = append(variants, cur)
			if len(variants) < n {
				cur = cur.Rotate90()
			}
		}
	}
	return variants
}

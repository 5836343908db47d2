package grid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwave/wfc/internal/grid"
)

func TestFromRowsRejectsEmptyAndNonRectangular(t *testing.T) {
	_, err := grid.FromRows[int](nil)
	require.ErrorIs(t, err, grid.ErrEmpty)

	_, err = grid.FromRows([][]int{{1, 2}, {3}})
	require.ErrorIs(t, err, grid.ErrNonRectangular)
}

func TestGetPeriodicWraps(t *testing.T) {
	g, err := grid.FromRows([][]int{
		{1, 2, 3},
		{4, 5, 6},
	})
	require.NoError(t, err)

	require.Equal(t, 1, g.GetPeriodic(0, 0))
	require.Equal(t, 1, g.GetPeriodic(2, 3))  // wraps both axes
	require.Equal(t, 6, g.GetPeriodic(-1, -1))
}

func TestRotate90(t *testing.T) {
	g, err := grid.FromRows([][]int{
		{1, 2},
		{3, 4},
	})
	require.NoError(t, err)

	r := g.Rotate90()
	require.Equal(t, 2, r.Height())
	require.Equal(t, 2, r.Width())
	// clockwise: top-left (1) moves to top-right.
	require.Equal(t, 3, r.Get(0, 0))
	require.Equal(t, 1, r.Get(0, 1))
	require.Equal(t, 4, r.Get(1, 0))
	require.Equal(t, 2, r.Get(1, 1))
}

func TestReflectX(t *testing.T) {
	g, err := grid.FromRows([][]int{
		{1, 2, 3},
	})
	require.NoError(t, err)

	r := g.ReflectX()
	require.Equal(t, 3, r.Get(0, 0))
	require.Equal(t, 2, r.Get(0, 1))
	require.Equal(t, 1, r.Get(0, 2))
}

func TestDihedralSymmetryCounts(t *testing.T) {
	g, err := grid.FromRows([][]int{
		{1, 2},
		{3, 4},
	})
	require.NoError(t, err)

	require.Len(t, grid.Dihedral(g, 1), 1)
	require.Len(t, grid.Dihedral(g, 8), 8)

	variants := grid.Dihedral(g, 4)
	require.Equal(t, 1, variants[0].Get(0, 0)) // identity
	require.Equal(t, 4, variants[2].Get(0, 0)) // rot180 puts 4 at top-left
}

func TestEqual(t *testing.T) {
	a, _ := grid.FromRows([][]int{{1, 2}})
	b, _ := grid.FromRows([][]int{{1, 2}})
	c, _ := grid.FromRows([][]int{{1, 3}})

	eq := func(x, y int) bool { return x == y }
	require.True(t, grid.Equal(a, b, eq))
	require.False(t, grid.Equal(a, c, eq))
}

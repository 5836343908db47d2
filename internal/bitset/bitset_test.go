package bitset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwave/wfc/internal/bitset"
)

func TestNewIsEmpty(t *testing.T) {
	s := bitset.New(10)
	require.Equal(t, 0, s.Count())
	for i := 0; i < 10; i++ {
		require.False(t, s.Test(i))
	}
}

func TestFullIsAllSet(t *testing.T) {
	s := bitset.Full(130) // spans three 64-bit words, exercises the tail mask
	require.Equal(t, 130, s.Count())
	for i := 0; i < 130; i++ {
		require.True(t, s.Test(i))
	}
}

func TestSetClear(t *testing.T) {
	s := bitset.New(5)
	s.Set(2)
	require.True(t, s.Test(2))
	require.Equal(t, 1, s.Count())

	s.Clear(2)
	require.False(t, s.Test(2))
	require.Equal(t, 0, s.Count())
}

func TestCloneIsIndependent(t *testing.T) {
	s := bitset.Full(8)
	c := s.Clone()
	c.Clear(3)
	require.True(t, s.Test(3))
	require.False(t, c.Test(3))
}

func TestEachAscendingAndEarlyStop(t *testing.T) {
	s := bitset.New(70)
	s.Set(5)
	s.Set(64)
	s.Set(69)

	var seen []int
	s.Each(func(i int) bool {
		seen = append(seen, i)
		return true
	})
	require.Equal(t, []int{5, 64, 69}, seen)

	var first int
	s.Each(func(i int) bool {
		first = i
		return false
	})
	require.Equal(t, 5, first)
}

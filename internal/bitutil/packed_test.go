package bitutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetWithinSingleWord(t *testing.T) {
	v := NewPackedUintVector(5, 6)
	vals := []uint64{0, 17, 63, 42, 1}
	for i, val := range vals {
		v.Set(uint64(i), val)
	}
	for i, val := range vals {
		require.Equal(t, val, v.Get(uint64(i)))
	}
}

func TestSetGetSpanningWordBoundary(t *testing.T) {
	// width 40 guarantees some elements straddle a 64-bit word boundary.
	v := NewPackedUintVector(4, 40)
	vals := []uint64{0xFFFFFFFFFF, 1, 0xABCDEF1234, 0}
	for i, val := range vals {
		v.Set(uint64(i), val)
	}
	for i, val := range vals {
		require.Equal(t, val, v.Get(uint64(i)))
	}
}

func TestWidth64(t *testing.T) {
	v := NewPackedUintVector(3, 64)
	v.Set(0, ^uint64(0))
	v.Set(1, 0)
	v.Set(2, 0x1234567890ABCDEF)
	require.Equal(t, ^uint64(0), v.Get(0))
	require.Equal(t, uint64(0), v.Get(1))
	require.Equal(t, uint64(0x1234567890ABCDEF), v.Get(2))
}

func TestOverwriteDoesNotLeakIntoNeighbors(t *testing.T) {
	v := NewPackedUintVector(3, 10)
	v.Set(0, 1023)
	v.Set(1, 1023)
	v.Set(2, 1023)
	v.Set(1, 0)
	require.Equal(t, uint64(1023), v.Get(0))
	require.Equal(t, uint64(0), v.Get(1))
	require.Equal(t, uint64(1023), v.Get(2))
}

func TestLenAndWidth(t *testing.T) {
	v := NewPackedUintVector(100, 12)
	require.Equal(t, uint64(100), v.Len())
	require.Equal(t, uint(12), v.Width())
}

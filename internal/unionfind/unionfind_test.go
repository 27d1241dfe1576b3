package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSingletonsAreTheirOwnRoot(t *testing.T) {
	d := New(5)
	for i := uint64(0); i < 5; i++ {
		require.Equal(t, i, d.Find(i))
	}
}

func TestUnionMergesDistinctSets(t *testing.T) {
	d := New(5)
	merged := d.Union(0, 1)
	require.True(t, merged)
	require.Equal(t, d.Find(0), d.Find(1))
}

func TestUnionOfAlreadyMergedSetsIsNoOp(t *testing.T) {
	d := New(5)
	d.Union(0, 1)
	again := d.Union(0, 1)
	require.False(t, again, "union of an already-joined pair reports no merge happened")
}

func TestUnionChainsTransitively(t *testing.T) {
	d := New(6)
	d.Union(0, 1)
	d.Union(1, 2)
	d.Union(3, 4)
	require.Equal(t, d.Find(0), d.Find(2))
	require.NotEqual(t, d.Find(0), d.Find(3))

	d.Union(2, 3)
	require.Equal(t, d.Find(0), d.Find(4))
	require.NotEqual(t, d.Find(0), d.Find(5), "singleton 5 was never unioned")
}

func TestFindCompressesPath(t *testing.T) {
	d := New(4)
	d.Union(0, 1)
	d.Union(1, 2)
	d.Union(2, 3)
	root := d.Find(0)
	// after Find, every node should report the same root directly
	for i := uint64(0); i < 4; i++ {
		require.Equal(t, root, d.Find(i))
	}
}

package mst

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	edges, src, rootID, numSamples := buildStar()
	art := Build(edges, src, rootID, numSamples, 1)

	dir := t.TempDir()
	parentsPath := filepath.Join(dir, "parents.bv")
	boundariesPath := filepath.Join(dir, "boundaries.bv")
	deltasPath := filepath.Join(dir, "deltas.bv")

	require.NoError(t, art.Save(parentsPath, boundariesPath, deltasPath))

	loaded, err := Load(parentsPath, boundariesPath, deltasPath, rootID, numSamples)
	require.NoError(t, err)

	require.Equal(t, art.Parent, loaded.Parent)
	require.Equal(t, art.TotalWeight, loaded.TotalWeight)
	for id := uint64(1); id <= rootID; id++ {
		require.Equal(t, art.DeltaSlice(id), loaded.DeltaSlice(id))
	}
}

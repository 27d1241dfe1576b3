package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathsJoinUnderDir(t *testing.T) {
	p := New("/tmp/idx")
	require.Equal(t, filepath.Join("/tmp/idx", "main.filter"), p.MainFilter())
	require.Equal(t, filepath.Join("/tmp/idx", "sampleid.lst"), p.SampleList())
	require.Equal(t, filepath.Join("/tmp/idx", "parents.bv"), p.Parents())
	require.Equal(t, filepath.Join("/tmp/idx", "boundaries.bv"), p.Boundaries())
	require.Equal(t, filepath.Join("/tmp/idx", "deltas.bv"), p.Deltas())
	require.Equal(t, filepath.Join("/tmp/idx", "newID2oldIDs"), p.NewID2OldIDs())
	require.Equal(t, filepath.Join("/tmp/idx", "minimizer_boundary"), p.MinimizerBoundary())
	require.Equal(t, filepath.Join("/tmp/idx", "manifest.msgpack"), p.Manifest())
}

func TestBufferFileUsesEqclassSuffix(t *testing.T) {
	p := New("/tmp/idx")
	require.Equal(t, filepath.Join("/tmp/idx", "3_eqclass"), p.BufferFile(3))
	require.Equal(t, "eqclass", p.EqclassSuffix())
}

package samples

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssignsIDsInListOrder(t *testing.T) {
	r := New([]string{"s1", "s2", "s3"})
	require.Equal(t, 3, r.Len())

	name, ok := r.Name(1)
	require.True(t, ok)
	require.Equal(t, "s1", name)

	name, ok = r.Name(3)
	require.True(t, ok)
	require.Equal(t, "s3", name)

	id, ok := r.ID("s2")
	require.True(t, ok)
	require.Equal(t, uint64(2), id)
}

func TestNameOutOfRange(t *testing.T) {
	r := New([]string{"only"})
	_, ok := r.Name(0)
	require.False(t, ok)
	_, ok = r.Name(2)
	require.False(t, ok)
}

func TestIDUnknownName(t *testing.T) {
	r := New([]string{"a", "b"})
	_, ok := r.ID("nope")
	require.False(t, ok)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	names := []string{"alpha", "beta", "gamma"}
	path := filepath.Join(t.TempDir(), "sampleid.lst")
	require.NoError(t, Write(path, names))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())
	for i, n := range names {
		got, ok := loaded.Name(uint64(i + 1))
		require.True(t, ok)
		require.Equal(t, n, got)
	}
}

func TestSealedFastIDMatchesRegistry(t *testing.T) {
	r := New([]string{"sample_a", "sample_b", "sample_c", "sample_d"})
	sealed := Seal(r)

	for _, name := range []string{"sample_a", "sample_b", "sample_c", "sample_d"} {
		want, ok := r.ID(name)
		require.True(t, ok)
		got, ok := sealed.FastID(name)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestSealedFastIDFallsBackOnUnknownName(t *testing.T) {
	r := New([]string{"x", "y"})
	sealed := Seal(r)
	_, ok := sealed.FastID("unknown")
	require.False(t, ok)
}

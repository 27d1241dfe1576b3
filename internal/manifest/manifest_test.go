package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m := Manifest{
		K:            31,
		NumSamples:   12,
		NumColors:    340,
		MSTWeight:    980,
		BuildTime:    5 * time.Second,
		QuotientBits: 16,
		KeyBits:      62,
	}
	path := filepath.Join(t.TempDir(), "manifest.msgpack")
	require.NoError(t, Write(path, m))

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.msgpack"))
	require.Error(t, err)
}

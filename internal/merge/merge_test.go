package merge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorstore"
	"github.com/KoyanoBunsho/mantis/internal/filter"
)

func sampleFilter(t *testing.T, keys ...uint64) *filter.Filter64 {
	f := filter.New(filter.Config{QuotientBits: 4, KeyBits: 64, Mode: filter.HashXXH3, Seed: 1})
	for _, k := range keys {
		f.Insert(k, 1)
	}
	return f
}

func TestBuildAssignsSharedColorsToKmersWithIdenticalSampleSets(t *testing.T) {
	const kmerA, kmerB = uint64(111), uint64(222)

	// sample0: {A}; sample1: {A, B}; sample2: {B}
	samples := []*filter.Filter64{
		sampleFilter(t, kmerA),
		sampleFilter(t, kmerA, kmerB),
		sampleFilter(t, kmerB),
	}

	numSamples := len(samples)
	dir := t.TempDir()
	buf := bitmap.NewBuffer(numSamples, 1<<20, dir, "eqclass") // large budget: no mid-build flush
	store := colorstore.New(buf)
	main := filter.New(filter.Config{QuotientBits: 4, KeyBits: 64, Mode: filter.HashXXH3, Seed: 99})

	c := New(samples, main, store, buf)
	c.Build()

	require.Equal(t, uint64(2), c.ColorCount(), "two distinct sample-set patterns: {0,1} and {1,2}")

	colorA := main.Query(kmerA)
	colorB := main.Query(kmerB)
	require.NotZero(t, colorA)
	require.NotZero(t, colorB)
	require.NotEqual(t, colorA, colorB)

	table := bitmap.NewTable(dir, "eqclass", buf.BufferSize(), numSamples)
	bmA, err := table.Get(uint64(colorA))
	require.NoError(t, err)
	require.True(t, bmA.Test(0))
	require.True(t, bmA.Test(1))
	require.False(t, bmA.Test(2))

	bmB, err := table.Get(uint64(colorB))
	require.NoError(t, err)
	require.False(t, bmB.Test(0))
	require.True(t, bmB.Test(1))
	require.True(t, bmB.Test(2))
}

func TestBuildSingleSampleAllKmersShareOneColor(t *testing.T) {
	samples := []*filter.Filter64{
		sampleFilter(t, 1, 2, 3),
	}
	dir := t.TempDir()
	buf := bitmap.NewBuffer(1, 1<<20, dir, "eqclass")
	store := colorstore.New(buf)
	main := filter.New(filter.Config{QuotientBits: 4, KeyBits: 64, Mode: filter.HashXXH3})

	c := New(samples, main, store, buf)
	c.Build()

	require.Equal(t, uint64(1), c.ColorCount(), "a single sample has exactly one distinct bitmap pattern")
}

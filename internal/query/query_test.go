package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
	"github.com/KoyanoBunsho/mantis/internal/decoder"
	"github.com/KoyanoBunsho/mantis/internal/filter"
	"github.com/KoyanoBunsho/mantis/internal/kmer"
	"github.com/KoyanoBunsho/mantis/internal/mst"
)

// memSource is an in-memory BitmapSource backing the small fixture
// index below (mirrors internal/mst's own test fixture style).
type memSource struct{ bitmaps map[uint64]bitmap.Bitmap }

func (m memSource) Get(id uint64) (bitmap.Bitmap, error) { return m.bitmaps[id], nil }

func bm(s int, bits ...int) bitmap.Bitmap {
	b := bitmap.New(s)
	for _, i := range bits {
		b.Set(i)
	}
	return b
}

// buildIndex seals a 2-sample, 2-color index: color 1 = {sample 0},
// color 2 = {sample 1}, over two de-Bruijn-adjacent k-mers so color 1
// and 2 both reach the synthetic root (id 3) through colorgraph.Enumerate.
func buildIndex(t *testing.T) (*filter.Filter64, *decoder.Decoder) {
	t.Helper()
	const klen = 4
	main := filter.New(filter.Config{QuotientBits: 4, KeyBits: 64, Mode: filter.HashXXH3})

	u := kmer.Encode([]byte("ACGT"))
	v := kmer.Neighbours(u, klen)[0]
	main.Insert(uint64(u), 1)
	main.Insert(uint64(v), 2)

	edges, _, err := colorgraph.Enumerate(main, colorgraph.Params{
		K: 4, KLen: klen, Threads: 1, ScratchDir: t.TempDir(), NumColors: 2,
	})
	require.NoError(t, err)

	src := memSource{bitmaps: map[uint64]bitmap.Bitmap{
		1: bm(2, 0),
		2: bm(2, 1),
	}}
	art := mst.Build(edges, src, 3, 2, 1)
	return main, decoder.New(art, 0)
}

func TestQueryOfKmerAbsentFromAllSamplesScoresNothing(t *testing.T) {
	main, dec := buildIndex(t)
	surface := New(main, dec, nil)

	absent := kmer.Encode([]byte("TTTT"))
	result := surface.Query([]kmer.Kmer64{absent}, 4)

	require.Empty(t, result.PerColorHits)
	require.Nil(t, result.PerSampleHits)
}

func TestQueryOfKnownKmerReturnsItsSampleSet(t *testing.T) {
	main, dec := buildIndex(t)
	surface := New(main, dec, nil)

	u := kmer.Encode([]byte("ACGT"))
	result := surface.Query([]kmer.Kmer64{u}, 4)

	require.Equal(t, uint64(1), result.PerColorHits[1])
	require.Equal(t, []uint64{1, 0}, result.PerSampleHits)
}

func TestQueryTalliesRepeatedHitsAcrossSamples(t *testing.T) {
	main, dec := buildIndex(t)
	surface := New(main, dec, nil)

	const klen = 4
	u := kmer.Encode([]byte("ACGT"))
	v := kmer.Neighbours(u, klen)[0]
	result := surface.Query([]kmer.Kmer64{u, u, v}, klen)

	require.Equal(t, uint64(2), result.PerColorHits[1])
	require.Equal(t, uint64(1), result.PerColorHits[2])
	require.Equal(t, []uint64{2, 1}, result.PerSampleHits)
}

func TestQueryWithNegativeFilterSkipsKmersItReportsAbsent(t *testing.T) {
	main, dec := buildIndex(t)
	neg := NewNegativeFilter(100)
	surface := New(main, dec, neg)

	u := kmer.Encode([]byte("ACGT"))
	result := surface.Query([]kmer.Kmer64{u}, 4)

	// neg never saw u inserted, so every element in it reads as absent
	// and the pre-check must skip the full filter probe entirely.
	require.Empty(t, result.PerColorHits)
	require.Nil(t, result.PerSampleHits)
}

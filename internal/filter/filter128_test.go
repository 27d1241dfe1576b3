package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter128InsertAndQuery(t *testing.T) {
	f := New128(Config{QuotientBits: 4, KeyBits: 128, Seed: 5})
	k1 := Key128{Lo: 1, Hi: 2}
	k2 := Key128{Lo: 3, Hi: 4}
	f.Insert(k1, 11)
	f.Insert(k2, 22)

	require.Equal(t, uint32(11), f.Query(k1))
	require.Equal(t, uint32(22), f.Query(k2))
	require.Equal(t, uint32(0), f.Query(Key128{Lo: 9, Hi: 9}))
}

func TestFilter128DuplicateInsertPanics(t *testing.T) {
	f := New128(Config{QuotientBits: 4, KeyBits: 128, Seed: 5})
	k := Key128{Lo: 1, Hi: 1}
	f.Insert(k, 1)
	require.Panics(t, func() { f.Insert(k, 2) })
}

func TestFilter128AutoResize(t *testing.T) {
	f := New128(Config{QuotientBits: 2, KeyBits: 128, Seed: 9})
	for i := uint64(1); i <= 20; i++ {
		f.Insert(Key128{Lo: i, Hi: i * 2}, uint32(i))
	}
	for i := uint64(1); i <= 20; i++ {
		require.Equal(t, uint32(i), f.Query(Key128{Lo: i, Hi: i * 2}))
	}
}

func TestFilter128IterateVisitsEveryKey(t *testing.T) {
	f := New128(Config{QuotientBits: 4, KeyBits: 128, Seed: 1})
	keys := []Key128{{Lo: 1, Hi: 0}, {Lo: 2, Hi: 0}, {Lo: 3, Hi: 1}}
	for i, k := range keys {
		f.Insert(k, uint32(i+1))
	}

	seen := map[Key128]uint32{}
	it := f.Iterate()
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		seen[k] = v
	}
	require.Len(t, seen, len(keys))
}

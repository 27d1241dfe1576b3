// Package query implements the batch k-mer query surface (spec.md §6,
// A7): look up each canonical k-mer's color-class id in the sealed main
// filter, tally per-color hit counts, then decode each hit color-class
// once and fan its count out per sample.
package query

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/KoyanoBunsho/mantis/internal/decoder"
	"github.com/KoyanoBunsho/mantis/internal/filter"
	"github.com/KoyanoBunsho/mantis/internal/kmer"
)

// Result is the per-sample hit tally for one query batch.
type Result struct {
	PerColorHits  map[uint32]uint64 // color-class id -> number of query k-mers that hit it
	PerSampleHits []uint64          // sample index -> total hit count across all hit colors
}

// Surface answers batch k-mer queries against one sealed index.
type Surface struct {
	main *filter.Filter64
	dec  *decoder.Decoder
	neg  *bloom.BloomFilter
}

// New builds a query surface over an already-open main filter and MST
// decoder. neg, if non-nil, is consulted as a cheap negative pre-check
// before a full filter probe — a k-mer neg reports absent is skipped
// without paying for the main filter's hash+probe cost.
func New(main *filter.Filter64, dec *decoder.Decoder, neg *bloom.BloomFilter) *Surface {
	return &Surface{main: main, dec: dec, neg: neg}
}

// NewNegativeFilter builds the bloom pre-check from an estimated k-mer
// universe size, sized for a 1% false-positive rate.
func NewNegativeFilter(estimatedKmers uint64) *bloom.BloomFilter {
	return bloom.NewWithEstimates(uint(estimatedKmers), 0.01)
}

// Query canonicalizes each k-mer in queries, looks it up, tallies per-color hits,
// then decodes every hit color exactly once and fans its count out to
// every sample present in that color's bitmap.
func (s *Surface) Query(queries []kmer.Kmer64, klen int) Result {
	perColor := make(map[uint32]uint64)

	for _, raw := range queries {
		k := kmer.Canonical(raw, klen)
		if s.neg != nil && !s.neg.Test(keyBytes(k)) {
			continue
		}
		color := s.main.Query(uint64(k))
		if color == 0 {
			continue
		}
		perColor[color]++
	}

	var perSample []uint64
	for color, hits := range perColor {
		bm := s.dec.Decode(uint64(color))
		if perSample == nil {
			perSample = make([]uint64, bm.Size())
		}
		for i := 0; i < bm.Size(); i++ {
			if bm.Test(i) {
				perSample[i] += hits
			}
		}
	}

	return Result{PerColorHits: perColor, PerSampleHits: perSample}
}

func keyBytes(k kmer.Kmer64) []byte {
	v := uint64(k)
	return []byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	}
}

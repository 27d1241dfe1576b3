package mstmerge

import (
	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
	"github.com/KoyanoBunsho/mantis/internal/decoder"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
	"github.com/KoyanoBunsho/mantis/internal/filter"
	"github.com/KoyanoBunsho/mantis/internal/mst"
)

// pairSource resolves a pair-index color id to the concatenation of its
// two parent colors' decoded bitmaps (samples_I1 followed by
// samples_I2), so that the generic mst.Build weighting/encoding pass —
// hamming distance and delta-list over the combined bitmap — computes
// exactly the sum-of-hammings and union-of-deltas spec.md §4.7 calls
// for, without ever materialising the pair-bitmap itself.
type pairSource struct {
	pairs      map[uint64]Pair
	dec1, dec2 *decoder.Decoder
	samples1   int
	samples2   int
	rootID     uint64
}

func (s pairSource) Get(id uint64) (bitmap.Bitmap, error) {
	if id == s.rootID {
		return bitmap.Zero(s.samples1 + s.samples2), nil
	}
	p, ok := s.pairs[id]
	errutil.BugOn(!ok, "mstmerge: pair-index color %d has no newID2oldIDs entry", id)
	a := s.dec1.Decode(p.Old1)
	b := s.dec2.Decode(p.Old2)
	return bitmap.Concat(a, b), nil
}

// Merge combines two sealed indices' MSTs via their pair-index filter:
// it enumerates the pair-index color-graph exactly as C5 does, then
// builds a fresh MST over it (C6) using pairSource in place of a
// bitmap.Table, so every edge weight and delta-list is derived from
// cached decode_I1/decode_I2 calls rather than disk-resident bitmaps.
func Merge(pairFilter *filter.Filter64, pairs []Pair, dec1, dec2 *decoder.Decoder, samples1, samples2 int, enumParams colorgraph.Params) (*mst.Artifacts, error) {
	numColors := uint64(len(pairs))
	enumParams.NumColors = numColors
	edges, _, err := colorgraph.Enumerate(pairFilter, enumParams)
	if err != nil {
		return nil, err
	}

	rootID := numColors + 1 // colorgraph.Enumerate roots every one of the 1..numColors pair-colors here

	src := pairSource{
		pairs:    ByNewID(pairs),
		dec1:     dec1,
		dec2:     dec2,
		samples1: samples1,
		samples2: samples2,
		rootID:   rootID,
	}

	numSamples := samples1 + samples2
	return mst.Build(edges, src, rootID, numSamples, enumParams.Threads), nil
}

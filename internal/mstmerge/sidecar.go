// Package mstmerge implements the MST merger (spec.md §4.7, component
// C7): combining two sealed indices into one without rematerialising any
// bitmap, by treating each pair-index color-class id as the
// concatenation of its two parent colors' decoded bitmaps.
package mstmerge

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Pair records which (c1, c2) ∈ I1.colors × I2.colors a pair-index color
// id was assigned to, the newID2oldIDs sidecar from spec.md §6.
type Pair struct {
	NewID uint64
	Old1  uint64
	Old2  uint64
}

// WriteSidecar serialises pairs as `cnt` followed by `cnt` little-endian
// u64 triples (newId, oldId1, oldId2), per spec.md §6's newID2oldIDs
// file format.
func WriteSidecar(path string, pairs []Pair) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	errutil.FatalIf(binary.Write(f, binary.LittleEndian, uint64(len(pairs))))
	for _, p := range pairs {
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, p.NewID))
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, p.Old1))
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, p.Old2))
	}
	return nil
}

// ReadSidecar reads back a newID2oldIDs file written by WriteSidecar.
func ReadSidecar(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var count uint64
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	pairs := make([]Pair, count)
	for i := range pairs {
		errutil.FatalIf(binary.Read(f, binary.LittleEndian, &pairs[i].NewID))
		errutil.FatalIf(binary.Read(f, binary.LittleEndian, &pairs[i].Old1))
		errutil.FatalIf(binary.Read(f, binary.LittleEndian, &pairs[i].Old2))
	}
	return pairs, nil
}

// ByNewID indexes pairs for O(1) lookup by new id during weighting and
// delta-list construction.
func ByNewID(pairs []Pair) map[uint64]Pair {
	idx := make(map[uint64]Pair, len(pairs))
	for _, p := range pairs {
		idx[p.NewID] = p
	}
	return idx
}

package mst

import (
	"encoding/binary"
	"math/bits"
	"os"

	"github.com/hillbig/rsdic"

	"github.com/KoyanoBunsho/mantis/internal/bitutil"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Save persists an MST's three arrays to parentsPath/boundariesPath/
// deltasPath, the packed-vector/bit-vector/packed-vector layout named in
// spec.md §6.
func (a *Artifacts) Save(parentsPath, boundariesPath, deltasPath string) error {
	if err := savePacked(parentsPath, packParents(a)); err != nil {
		return err
	}
	if err := saveBoundary(boundariesPath, a.Boundary); err != nil {
		return err
	}
	return savePacked(deltasPath, a.Delta)
}

// Load reconstructs an Artifacts from the three files Save wrote, plus
// the parameters that aren't recoverable from the files alone.
func Load(parentsPath, boundariesPath, deltasPath string, rootID uint64, numSamples int) (*Artifacts, error) {
	parentVec, err := loadPacked(parentsPath)
	if err != nil {
		return nil, err
	}
	boundary, err := loadBoundary(boundariesPath)
	if err != nil {
		return nil, err
	}
	delta, err := loadPacked(deltasPath)
	if err != nil {
		return nil, err
	}

	parent := make([]uint64, parentVec.Len()+1) // re-expand to 1-indexed array
	for i := uint64(0); i < parentVec.Len(); i++ {
		parent[i+1] = parentVec.Get(i)
	}

	return &Artifacts{
		Parent:      parent,
		Boundary:    boundary,
		Delta:       delta,
		TotalWeight: delta.Len(),
		RootID:      rootID,
		NumNodes:    parentVec.Len(),
		NumSamples:  numSamples,
	}, nil
}

// packParents re-packs the 1-indexed Parent slice (index 0 unused) into
// a dense 0-indexed PackedUintVector sized to hold the largest id.
func packParents(a *Artifacts) *bitutil.PackedUintVector {
	width := uint(bits.Len64(a.NumNodes))
	if width == 0 {
		width = 1
	}
	v := bitutil.NewPackedUintVector(a.NumNodes, width)
	for id := uint64(1); id <= a.NumNodes; id++ {
		v.Set(id-1, a.Parent[id])
	}
	return v
}

func savePacked(path string, v *bitutil.PackedUintVector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	errutil.FatalIf(binary.Write(f, binary.LittleEndian, v.Len()))
	errutil.FatalIf(binary.Write(f, binary.LittleEndian, uint64(v.Width())))
	for _, w := range v.Words() {
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, w))
	}
	return nil
}

func loadPacked(path string) (*bitutil.PackedUintVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var n, width uint64
	errutil.FatalIf(binary.Read(f, binary.LittleEndian, &n))
	errutil.FatalIf(binary.Read(f, binary.LittleEndian, &width))

	v := bitutil.NewPackedUintVector(n, uint(width))
	words := v.Words()
	for i := range words {
		errutil.FatalIf(binary.Read(f, binary.LittleEndian, &words[i]))
	}
	return v, nil
}

func saveBoundary(path string, rs *rsdic.RSDic) error {
	data, err := rs.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadBoundary(path string) (*rsdic.RSDic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs := rsdic.New()
	if err := rs.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return rs, nil
}

package mst

import (
	"math/bits"
	"sort"
	"sync"

	"github.com/hillbig/rsdic"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/bitutil"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Artifacts is the three-array MST encoding from spec.md §3: parent[],
// boundary[] (a select1-capable bit vector), and delta[] (a packed
// integer array of sample indices).
type Artifacts struct {
	Parent      []uint64
	Boundary    *rsdic.RSDic
	Delta       *bitutil.PackedUintVector
	TotalWeight uint64
	RootID      uint64
	NumNodes    uint64
	NumSamples  int
}

// DeltaSlice returns the [start,end) delta entries belonging to id,
// located via two select1 probes on the boundary vector: the end of the
// previous node's span (the (id-1)-th one-bit) to the end of this node's
// own span (the id-th one-bit). Select is 1-indexed.
func (a *Artifacts) DeltaSlice(id uint64) []uint32 {
	var start uint64
	if id > 1 {
		start = a.Boundary.Select(id-1, true) + 1
	}
	end := a.Boundary.Select(id, true) + 1
	out := make([]uint32, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, uint32(a.Delta.Get(i)))
	}
	return out
}

// encode builds the parent/boundary/delta arrays from a BFS-oriented
// tree, per spec.md §4.6's "Encoding" pass.
func encode(adj map[uint64][]treeEdge, root, numNodes uint64, src BitmapSource, numSamples, threads int) *Artifacts {
	parent, weight := bfsFromRoot(adj, root, numNodes)

	offsets := make([]uint64, numNodes+2) // offsets[id] = start of id's span, 1-indexed
	cum := uint64(0)
	for id := uint64(1); id <= numNodes; id++ {
		offsets[id] = cum
		cum += weight[id]
	}
	totalWeight := cum

	boundary := rsdic.New()
	cum = 0
	for id := uint64(1); id <= numNodes; id++ {
		cum += weight[id]
		for cum > uint64(boundary.Num())+1 {
			boundary.PushBack(false)
		}
		boundary.PushBack(true)
	}

	sampleWidth := uint(bits.Len(uint(numSamples - 1)))
	if sampleWidth == 0 {
		sampleWidth = 1
	}
	delta := bitutil.NewPackedUintVector(totalWeight, sampleWidth)

	fillDeltas(delta, offsets, parent, weight, root, numNodes, numSamples, src, threads)

	return &Artifacts{
		Parent:      parent,
		Boundary:    boundary,
		Delta:       delta,
		TotalWeight: totalWeight,
		RootID:      root,
		NumNodes:    numNodes,
		NumSamples:  numSamples,
	}
}

// fillDeltas computes each non-root node's delta-list (the sorted sample
// indices where its bitmap differs from its parent's) by slicing the
// id-range across workers; each worker writes into a local staging
// buffer and a final mutex-guarded pass commits it into the shared
// packed vector, per spec.md §4.6/§5.
func fillDeltas(delta *bitutil.PackedUintVector, offsets []uint64, parent, weight []uint64, root, numNodes uint64, numSamples int, src BitmapSource, threads int) {
	if threads <= 0 {
		threads = 1
	}
	bitmapOf := func(id uint64) bitmap.Bitmap {
		if id == root {
			return bitmap.Zero(numSamples)
		}
		bm, err := src.Get(id)
		errutil.FatalIf(err)
		return bm
	}

	type write struct {
		offset uint64
		values []uint32
	}

	chunk := (numNodes + uint64(threads) - 1) / uint64(threads)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for w := uint64(0); w < uint64(threads); w++ {
		start := w*chunk + 1
		end := start + chunk
		if start > numNodes {
			break
		}
		if end > numNodes+1 {
			end = numNodes + 1
		}
		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			var local []write
			for id := start; id < end; id++ {
				if id == root {
					continue
				}
				childBm := bitmapOf(id)
				parentBm := bitmapOf(parent[id])
				dl := bitmap.DeltaList(childBm, parentBm)
				sort.Slice(dl, func(i, j int) bool { return dl[i] < dl[j] })
				errutil.BugOnNotEq(uint64(len(dl)), weight[id])
				local = append(local, write{offset: offsets[id], values: dl})
			}
			mu.Lock()
			for _, wr := range local {
				for i, v := range wr.values {
					delta.Set(wr.offset+uint64(i), uint64(v))
				}
			}
			mu.Unlock()
		}(start, end)
	}
	wg.Wait()
}

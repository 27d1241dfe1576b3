// Package mst implements the MST builder (spec.md §4.6, component C6):
// bucket-sort the color-graph's edges by Hamming weight, run Kruskal with
// union-find, then encode the resulting tree into parent/boundary/delta
// arrays.
package mst

import (
	"sync"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// BitmapSource resolves a color-class id to its bitmap, the contract the
// weighting pass and the delta-encoding pass both need. bitmap.Table
// satisfies it for real colors; the root's bitmap is supplied separately
// since it is never stored on disk.
type BitmapSource interface {
	Get(id uint64) (bitmap.Bitmap, error)
}

// weightEdges computes the Hamming-weight bucket assignment for every
// edge. Each endpoint's bitmap is fetched through src per edge; the only
// reuse is a per-worker single-element cache keyed by the last source id,
// which skips refetching a repeated first endpoint. Buffers are not
// grouped or held across edges here.
func weightEdges(edges []colorgraph.Edge, src BitmapSource, rootID uint64, numSamples int) [][]colorgraph.Edge {
	buckets := make([][]colorgraph.Edge, numSamples)

	type cacheEntry struct {
		id uint64
		bm bitmap.Bitmap
	}
	var lastA cacheEntry

	get := func(id uint64) bitmap.Bitmap {
		if id == rootID {
			return bitmap.Zero(numSamples)
		}
		bm, err := src.Get(id)
		errutil.FatalIf(err)
		return bm
	}

	for _, e := range edges {
		var a bitmap.Bitmap
		if lastA.id == uint64(e.N1) {
			a = lastA.bm
		} else {
			a = get(uint64(e.N1))
			lastA = cacheEntry{id: uint64(e.N1), bm: a}
		}
		b := get(uint64(e.N2))

		w := bitmap.HammingDistance(a, b)
		errutil.BugOn(w == 0, "mst: zero-weight edge between distinct colors %d and %d", e.N1, e.N2)
		buckets[w-1] = append(buckets[w-1], e)
	}
	return buckets
}

// weightEdgesParallel splits edges into contiguous slices (one per
// worker), weighs each slice independently, then merges the per-worker
// weight buckets under a single mutex — spec.md §5's "each worker
// computes into a local vector and appends under a single mutex at the
// end of its slice."
func weightEdgesParallel(edges []colorgraph.Edge, src BitmapSource, rootID uint64, numSamples, threads int) [][]colorgraph.Edge {
	if threads <= 1 || len(edges) < threads {
		return weightEdges(edges, src, rootID, numSamples)
	}

	merged := make([][]colorgraph.Edge, numSamples)
	var mu sync.Mutex
	var wg sync.WaitGroup

	chunk := (len(edges) + threads - 1) / threads
	for w := 0; w < threads; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(edges) {
			break
		}
		if end > len(edges) {
			end = len(edges)
		}
		wg.Add(1)
		go func(slice []colorgraph.Edge) {
			defer wg.Done()
			local := weightEdges(slice, src, rootID, numSamples)
			mu.Lock()
			for i, b := range local {
				merged[i] = append(merged[i], b...)
			}
			mu.Unlock()
		}(edges[start:end])
	}
	wg.Wait()
	return merged
}

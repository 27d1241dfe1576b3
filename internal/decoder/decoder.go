// Package decoder implements the color decoder (spec.md §4.8, component
// C8): reconstructing a color-class's sample-set bitmap by walking the
// MST from the id to the root and symmetric-difference-merging the
// delta-lists along the path.
package decoder

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/mst"
)

const defaultLRUSize = 4096

// samplingInterval is the "every 20th decode" cadence from spec.md §4.8.
const samplingInterval = 20

// Decoder walks an *mst.Artifacts to reconstruct bitmaps, keeping a
// per-decoder LRU (intended one-per-thread, per spec.md §5's per-thread
// cache ownership) plus a read-only fixed-top cache pinned before
// decoding starts.
type Decoder struct {
	art   *mst.Artifacts
	lru   *lru.Cache
	fixed map[uint64]bitmap.Bitmap

	mu      sync.Mutex
	decodes uint64
}

// New builds a decoder over art with an LRU of the given size (0 uses
// the default) and no fixed-top entries pinned yet; call PinTop to
// populate the fixed cache once the color-graph's edge frequencies are
// known.
func New(art *mst.Artifacts, lruSize int) *Decoder {
	if lruSize <= 0 {
		lruSize = defaultLRUSize
	}
	c, _ := lru.New(lruSize)
	return &Decoder{art: art, lru: c, fixed: make(map[uint64]bitmap.Bitmap)}
}

// PinTop precomputes and pins the bitmaps for the given ids, used for
// the "top-K most-referenced ids" fixed cache ahead of a weighting pass.
// The fixed cache is read-only once populated (spec.md §5).
func (d *Decoder) PinTop(ids []uint64) {
	for _, id := range ids {
		d.fixed[id] = d.decodeUncached(id)
	}
}

// Decode reconstructs the bitmap for id, consulting the fixed cache then
// the LRU before walking the MST. Every samplingInterval-th call also
// decodes and caches an additional id supplied by the walk (the
// "sampling" policy in spec.md §4.8), amortising future path costs.
func (d *Decoder) Decode(id uint64) bitmap.Bitmap {
	if bm, ok := d.fixed[id]; ok {
		return bm
	}
	if v, ok := d.lru.Get(id); ok {
		return v.(bitmap.Bitmap)
	}

	bm, hint := d.walk(id)
	d.lru.Add(id, bm)

	d.mu.Lock()
	d.decodes++
	shouldSample := d.decodes%samplingInterval == 0
	d.mu.Unlock()

	if shouldSample && hint != 0 {
		if _, ok := d.lru.Get(hint); !ok {
			if _, ok := d.fixed[hint]; !ok {
				d.lru.Add(hint, d.decodeUncached(hint))
			}
		}
	}
	return bm
}

func (d *Decoder) decodeUncached(id uint64) bitmap.Bitmap {
	bm, _ := d.walk(id)
	return bm
}

// walk performs the parent-chain XOR-fold: starting from id's own
// delta-list, it accumulates the symmetric difference of every
// delta-list on the path to the root. The root's own contribution is
// the all-absent bitmap, so its delta slice (a single sentinel entry)
// is never merged in. hint returns the midpoint ancestor on the walked
// path, a plausible next id worth caching under the sampling policy.
func (d *Decoder) walk(id uint64) (result bitmap.Bitmap, hint uint64) {
	root := d.art.RootID
	set := make(map[uint32]struct{})
	var path []uint64

	for cur := id; cur != root; cur = d.art.Parent[cur] {
		if bm, ok := d.cached(cur); ok {
			result = bm
			break
		}
		path = append(path, cur)
	}

	base := result
	if base.Size() == 0 {
		base = bitmap.Zero(d.art.NumSamples)
	}
	for i := 0; i < base.Size(); i++ {
		if base.Test(i) {
			set[uint32(i)] = struct{}{}
		}
	}

	for i := len(path) - 1; i >= 0; i-- {
		xorMerge(set, d.art.DeltaSlice(path[i]))
	}

	out := bitmap.New(d.art.NumSamples)
	for v := range set {
		out.Set(int(v))
	}

	if len(path) > 0 {
		hint = path[len(path)/2]
	}
	return out, hint
}

func (d *Decoder) cached(id uint64) (bitmap.Bitmap, bool) {
	if bm, ok := d.fixed[id]; ok {
		return bm, true
	}
	if v, ok := d.lru.Get(id); ok {
		return v.(bitmap.Bitmap), true
	}
	return bitmap.Bitmap{}, false
}

// xorMerge applies a delta-list (sorted sample indices) as a symmetric
// difference against set: present entries are removed, absent entries
// are added. set is a hash set, so each delta entry is toggled
// individually rather than by a linear merge of two ordered lists.
func xorMerge(set map[uint32]struct{}, delta []uint32) {
	sorted := delta
	if !sort.IsSorted(uint32Slice(sorted)) {
		sorted = append([]uint32(nil), delta...)
		sort.Sort(uint32Slice(sorted))
	}
	for _, v := range sorted {
		if _, ok := set[v]; ok {
			delete(set, v)
		} else {
			set[v] = struct{}{}
		}
	}
}

type uint32Slice []uint32

func (s uint32Slice) Len() int           { return len(s) }
func (s uint32Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Package unionfind implements the disjoint-set structure used by
// Kruskal's MST pass (spec.md §4.6, component C6). The node is packed
// into a single uint64 per element, adapted directly from mstMerger.h's
// DisjointSets: one bit marks "is its own parent", the rest hold the
// parent id (or, for a root, the rank), per DESIGN NOTES §9's "halve
// memory" packed encoding.
package unionfind

// DisjointSets is a union-find over n elements, path-compressed and
// union-by-rank, walked iteratively (no recursion — DESIGN NOTES §9
// requires this for safety on large indices where tree height can reach
// the full element count in pathological inputs).
type DisjointSets struct {
	els []uint64 // (value << 1) | selfParent
	n   uint64
}

// New allocates n singleton sets, each its own parent with rank 0.
func New(n uint64) *DisjointSets {
	els := make([]uint64, n)
	for i := range els {
		els[i] = 1 // selfParent bit set, rank 0
	}
	return &DisjointSets{els: els, n: n}
}

func (d *DisjointSets) selfParent(i uint64) bool { return d.els[i]&1 != 0 }
func (d *DisjointSets) value(i uint64) uint64    { return d.els[i] >> 1 }

func (d *DisjointSets) setParent(i, parent uint64) {
	d.els[i] = (parent << 1) | boolBit(i == parent)
}

func (d *DisjointSets) setRank(i, rank uint64) {
	d.els[i] = (rank << 1) | 1
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Find returns the representative of i's set, compressing every node on
// the path to point directly at the root.
func (d *DisjointSets) Find(i uint64) uint64 {
	root := i
	for !d.selfParent(root) {
		root = d.value(root)
	}
	for !d.selfParent(i) {
		next := d.value(i)
		d.setParent(i, root)
		i = next
	}
	return root
}

func (d *DisjointSets) rank(root uint64) uint64 { return d.value(root) }

// Union merges the sets containing x and y, by rank, and reports whether
// they were already the same set (a no-op union, which the caller treats
// as "this edge would close a cycle — skip it").
func (d *DisjointSets) Union(x, y uint64) bool {
	rx, ry := d.Find(x), d.Find(y)
	if rx == ry {
		return false
	}
	if d.rank(rx) < d.rank(ry) {
		rx, ry = ry, rx
	}
	if d.rank(rx) == d.rank(ry) {
		d.setRank(rx, d.rank(rx)+1)
	}
	d.setParent(ry, rx)
	return true
}

package mst

import (
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
)

// Build runs the full C6 pipeline: weight the color-graph's edges by
// Hamming distance, select a minimum spanning tree via Kruskal, then
// encode the tree into parent/boundary/delta arrays rooted at the
// synthetic all-absent color rootID.
//
// numColors is the count of real color-classes (1..numColors); rootID
// is the synthetic S_all id produced by colorgraph.Enumerate
// (numColors+1), and numNodes = rootID is the total node count.
func Build(edges []colorgraph.Edge, src BitmapSource, rootID uint64, numSamples, threads int) *Artifacts {
	numNodes := rootID
	buckets := weightEdgesParallel(edges, src, rootID, numSamples, threads)
	adj, _, _ := kruskal(buckets, numNodes)
	return encode(adj, rootID, numNodes, src, numSamples, threads)
}

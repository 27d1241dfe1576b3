package mst

import (
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
	"github.com/KoyanoBunsho/mantis/internal/unionfind"
)

type treeEdge struct {
	to     uint64
	weight uint32
}

// kruskal iterates weight buckets ascending, unioning endpoints that
// aren't already connected, and returns the resulting spanning tree as an
// adjacency list plus the accumulated total weight.
func kruskal(buckets [][]colorgraph.Edge, numNodes uint64) (adj map[uint64][]treeEdge, totalWeight uint64, numSelected uint64) {
	uf := unionfind.New(numNodes + 1) // ids are 1-based up to numNodes; element 0 unused
	adj = make(map[uint64][]treeEdge, numNodes)

	for w := 1; w <= len(buckets); w++ {
		for _, e := range buckets[w-1] {
			u, v := uint64(e.N1), uint64(e.N2)
			if !uf.Union(u, v) {
				continue
			}
			adj[u] = append(adj[u], treeEdge{to: v, weight: uint32(w)})
			adj[v] = append(adj[v], treeEdge{to: u, weight: uint32(w)})
			totalWeight += uint64(w)
			numSelected++
		}
	}
	errutil.BugOn(numSelected != numNodes-1, "mst: spanning tree has %d edges, want %d (graph is disconnected)", numSelected, numNodes-1)
	return adj, totalWeight, numSelected
}

// bfsFromRoot walks the tree from root, assigning each non-root node its
// BFS parent and the weight of the edge to that parent. Iterative (an
// explicit queue), per DESIGN NOTES §9's ban on recursion for decode/MST
// walks whose depth can reach the full node count.
func bfsFromRoot(adj map[uint64][]treeEdge, root, numNodes uint64) (parent []uint64, weight []uint64) {
	parent = make([]uint64, numNodes+1) // 1-indexed by id
	weight = make([]uint64, numNodes+1)
	visited := make([]bool, numNodes+1)

	parent[root] = root
	weight[root] = 1 // sentinel slot, per spec.md §4.6
	visited[root] = true

	queue := []uint64{root}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range adj[u] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			parent[e.to] = u
			weight[e.to] = uint64(e.weight)
			queue = append(queue, e.to)
		}
	}
	return parent, weight
}

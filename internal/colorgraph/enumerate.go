package colorgraph

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
	"github.com/KoyanoBunsho/mantis/internal/filter"
	"github.com/KoyanoBunsho/mantis/internal/kmer"
)

// DefaultMaxTmpEdges is spec.md §4.5's default spill threshold
// (31,250,000), divided evenly across workers.
const DefaultMaxTmpEdges = 31_250_000

// Params configures the enumerator's work partitioning and scratch-file
// behaviour.
type Params struct {
	K           int
	KLen        int // number of bases, klen <= 32 for Filter64
	Threads     int
	MaxTmpEdges uint64
	ScratchDir  string

	// NumColors is the total count of real color-classes (ids 1..NumColors)
	// already known to the caller (colorstore.Len(), or the pair-index's
	// len(pairs)) before any adjacency edge is found. Finalisation roots
	// every one of these ids, not just the ones touched by a de-Bruijn
	// adjacency edge: a color with no differently-colored neighbour (the
	// only color when N=1, or any isolated/tip color in general) never
	// appears in the edge list otherwise, and silently dropping it leaves
	// the MST disconnected.
	NumColors uint64
}

// Enumerate scans main in T disjoint slot ranges, one goroutine per
// range, each spilling to a worker-private scratch file when its local
// buffer fills, then reduces all scratch files into a single sorted,
// deduplicated edge list and appends the synthetic-root edges after it.
// The edges are not bucketed here; Bucket does that separately. idSpan
// is sAll+1, the length of an array indexed by id 0..sAll.
func Enumerate(main *filter.Filter64, p Params) (edges []Edge, idSpan uint64, err error) {
	if p.Threads <= 0 {
		p.Threads = 1
	}
	if p.MaxTmpEdges == 0 {
		p.MaxTmpEdges = DefaultMaxTmpEdges
	}
	perWorkerCap := p.MaxTmpEdges / uint64(p.Threads)
	if perWorkerCap == 0 {
		perWorkerCap = 1
	}

	slotCount := main.SlotCount()
	chunk := (slotCount + p.Threads - 1) / p.Threads

	scratchFiles := make([]string, p.Threads)
	var wg sync.WaitGroup
	errs := make([]error, p.Threads)

	for w := 0; w < p.Threads; w++ {
		start := w * chunk
		end := start + chunk
		if end > slotCount {
			end = slotCount
		}
		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			path, werr := scanRange(main, p, start, end, perWorkerCap, workerID)
			scratchFiles[workerID] = path
			errs[workerID] = werr
		}(w, start, end)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return nil, 0, e
		}
	}

	all, rerr := reduce(scratchFiles)
	if rerr != nil {
		return nil, 0, rerr
	}

	errutil.BugOn(p.NumColors == 0, "colorgraph: Params.NumColors must be set to the real color-class count")

	// Finalisation: add the synthetic root S_all, with an edge (c, S_all)
	// for every real color-class c in 1..NumColors (spec.md §4.5) —
	// every one of them, not just those touched by an adjacency edge, so
	// an isolated color-class still reaches the root.
	sAll := uint32(p.NumColors) + 1
	for c := uint32(1); c <= uint32(p.NumColors); c++ {
		all = append(all, NewEdge(c, sAll))
	}

	return all, uint64(sAll) + 1, nil
}

func scanRange(main *filter.Filter64, p Params, start, end int, cap uint64, workerID int) (string, error) {
	local := make([]Edge, 0, cap)
	path := filepath.Join(p.ScratchDir, fmt.Sprintf("edges.worker%d.scratch", workerID))
	spillCount := 0

	flushLocal := func() error {
		if len(local) == 0 {
			return nil
		}
		if err := appendScratch(path, local, spillCount == 0); err != nil {
			return err
		}
		spillCount++
		local = local[:0]
		return nil
	}

	for i := start; i < end; i++ {
		key, value, used := main.At(i)
		if !used || value == 0 {
			continue
		}
		cu := value
		u := kmer.Kmer64(key)
		for _, v := range kmer.Neighbours(u, p.KLen) {
			cv := main.Query(uint64(v))
			if cv == 0 || cv == cu {
				continue
			}
			local = append(local, NewEdge(cu, cv))
			if uint64(len(local)) >= cap {
				if err := flushLocal(); err != nil {
					return "", err
				}
			}
		}
	}
	if err := flushLocal(); err != nil {
		return "", err
	}
	if spillCount == 0 {
		return "", nil
	}
	return path, nil
}

// appendScratch writes a 64-bit count header followed by the edges, per
// spec.md §4.5: "spill to a worker-private scratch file prefixed by a
// 64-bit count header."
func appendScratch(path string, edges []Edge, firstWrite bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if firstWrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	errutil.FatalIf(binary.Write(f, binary.LittleEndian, uint64(len(edges))))
	for _, e := range edges {
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, e.N1))
		errutil.FatalIf(binary.Write(f, binary.LittleEndian, e.N2))
	}
	return nil
}

// reduce reads each scratch file (possibly several count-prefixed
// chunks), sorts lexicographically by (n1,n2), de-duplicates, and deletes
// the scratch file once absorbed.
func reduce(paths []string) ([]Edge, error) {
	var all []Edge
	for _, path := range paths {
		if path == "" {
			continue
		}
		chunkEdges, err := readScratch(path)
		if err != nil {
			return nil, err
		}
		all = append(all, chunkEdges...)
		errutil.FatalIf(os.Remove(path))
	}
	slices.SortFunc(all, func(a, b Edge) bool { return a.Less(b) })
	return dedup(all), nil
}

func readScratch(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Edge
	for {
		var count uint64
		if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
			break // EOF: no more count-prefixed chunks
		}
		for i := uint64(0); i < count; i++ {
			var e Edge
			errutil.FatalIf(binary.Read(f, binary.LittleEndian, &e.N1))
			errutil.FatalIf(binary.Read(f, binary.LittleEndian, &e.N2))
			out = append(out, e)
		}
	}
	return out, nil
}

func dedup(sorted []Edge) []Edge {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, e := range sorted[1:] {
		if e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}

// Bucket groups edges by (c_u div B, c_v div B) to localise later bitmap
// access during MST weighting, per spec.md §4.5's reduction pass.
func Bucket(edges []Edge, b uint64) map[[2]uint64][]Edge {
	buckets := make(map[[2]uint64][]Edge)
	for _, e := range edges {
		key := [2]uint64{uint64(e.N1) / b, uint64(e.N2) / b}
		buckets[key] = append(buckets[key], e)
	}
	return buckets
}

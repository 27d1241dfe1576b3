// Package merge implements the N-way merging constructor (spec.md §4.4,
// component C4): a two-phase (sampling then full) priority-queue merge of
// per-sample filter iterators that produces the main filter and the
// color-class bitmap table.
package merge

import (
	"container/heap"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorstore"
	"github.com/KoyanoBunsho/mantis/internal/filter"
)

// stream wraps one sample's filter iterator with its current head
// element, so the heap can compare heads without re-calling Next.
type stream struct {
	sampleID int
	f        *filter.Filter64
	it       *filter.Iterator
	key      uint64
	hash     uint64
	ok       bool
}

func (s *stream) advance() {
	key, _, ok := s.it.Next()
	s.key, s.ok = key, ok
	if ok {
		s.hash = s.f.HashOf(key)
	}
}

// streamHeap is a min-heap of streams ordered by the current head's
// hash, per spec.md §4.4 step 1: "Seed a min-heap with one iterator per
// input sample, compared by current k-mer hash."
type streamHeap []*stream

func (h streamHeap) Len() int            { return len(h) }
func (h streamHeap) Less(i, j int) bool  { return h[i].hash < h[j].hash }
func (h streamHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *streamHeap) Push(x interface{}) { *h = append(*h, x.(*stream)) }
func (h *streamHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Constructor drives the two-phase merge into a main filter and a color
// store backed by a bitmap buffer.
type Constructor struct {
	samples []*filter.Filter64
	n       int
	main    *filter.Filter64
	store   *colorstore.Store
	buf     *bitmap.Buffer
}

// New creates a constructor over the given per-sample filters, writing
// color ids into main and bitmaps into the store/buffer pair.
func New(samples []*filter.Filter64, main *filter.Filter64, store *colorstore.Store, buf *bitmap.Buffer) *Constructor {
	return &Constructor{samples: samples, n: len(samples), main: main, store: store, buf: buf}
}

func (c *Constructor) freshStreams() []*stream {
	streams := make([]*stream, c.n)
	for i, f := range c.samples {
		s := &stream{sampleID: i, f: f, it: f.Iterate()}
		s.advance()
		streams[i] = s
	}
	return streams
}

// Build runs phase A (sampling) then phase B (full), per spec.md §4.4.
func (c *Constructor) Build() {
	c.runSamplingPhase()
	c.runFullPhase()
}

// runSamplingPhase runs the merge loop until either input is exhausted
// or the buffer's bitmap count hits a multiple of B, then reorders the
// dedup map by decreasing refcount and reshuffles the buffer to match —
// with no flush. It then resets the main filter, since the sampling
// pass's insertions are exploratory only; the store keeps the reordered
// map, which seeds phase B.
func (c *Constructor) runSamplingPhase() {
	c.runLoop(true)
	oldToNew := c.store.ReorderByRefcount()
	c.buf.Reshuffle(oldToNew)
	c.resetMain()
}

// resetMain discards a sampling-phase main filter and allocates a fresh
// one of the same shape, since phase B re-inserts every k-mer from the
// start of all inputs.
func (c *Constructor) resetMain() {
	*c.main = *filter.New(c.main.Config())
}

// runFullPhase restarts the merge from the beginning of all inputs, now
// with the reordered map seeded, flushing the buffer every time the
// color count crosses a multiple of B. If the sampling phase stopped with
// the buffer exactly full, that buffer is flushed first, so the first id
// phase B assigns starts the next buffer.
func (c *Constructor) runFullPhase() {
	if n := c.store.Len(); n > 0 && n%c.buf.BufferSize() == 0 {
		c.buf.Flush()
	}
	c.runLoop(false)
	if c.buf.Placed() > 0 {
		c.buf.Flush()
	}
}

// runLoop is spec.md §4.4's shared merge loop. stopAtBoundary selects
// phase A's early-return behaviour; phase B instead flushes and
// continues.
func (c *Constructor) runLoop(stopAtBoundary bool) {
	all := c.freshStreams()
	live := make(streamHeap, 0, len(all))
	for _, s := range all {
		if s.ok {
			live = append(live, s)
		}
	}
	heap.Init(&live)

	numSamples := c.n
	for live.Len() > 0 {
		minHash := live[0].hash
		bm := bitmap.New(numSamples)
		var group []*stream

		for live.Len() > 0 && live[0].hash == minHash {
			top := heap.Pop(&live).(*stream)
			bm.Set(top.sampleID)
			group = append(group, top)
		}

		id, isNew := c.store.TryAdd(bm)
		key := group[0].key
		c.main.Insert(key, uint32(id))

		for _, s := range group {
			s.advance()
			if s.ok {
				heap.Push(&live, s)
			}
		}

		if isNew && c.store.Len()%c.buf.BufferSize() == 0 {
			if stopAtBoundary {
				return
			}
			c.buf.Flush()
		}
	}
}

// ColorCount returns the number of distinct color-classes assigned.
func (c *Constructor) ColorCount() uint64 { return c.store.Len() }

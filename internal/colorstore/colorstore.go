// Package colorstore implements the color-class store (spec.md §4.3,
// component C3): content-addressed deduplication of sample bitmaps keyed
// by a 128-bit hash, with at-most-one color-class id per distinct
// bitmap.
package colorstore

import (
	"sort"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
)

type hashKey struct{ hi, lo uint64 }

type entry struct {
	id       uint64
	refcount uint64
}

// Store is the hash128 -> (id, refcount) dedup map. It owns a bitmap
// buffer (C2) and places each newly-seen bitmap's bits into it.
type Store struct {
	byHash map[hashKey]*entry
	buf    *bitmap.Buffer
	nextID uint64
}

// New creates an empty store backed by buf.
func New(buf *bitmap.Buffer) *Store {
	return &Store{byHash: make(map[hashKey]*entry), buf: buf}
}

// TryAdd is spec.md §4.3's try_add: if bm has been seen before, its
// refcount is incremented and its id returned; otherwise a new id is
// assigned in first-seen order, the bitmap is placed into the backing
// buffer at slot id-1, and wasNew is true.
func (s *Store) TryAdd(bm bitmap.Bitmap) (id uint64, wasNew bool) {
	hi, lo := bm.Hash128()
	key := hashKey{hi, lo}
	if e, ok := s.byHash[key]; ok {
		e.refcount++
		return e.id, false
	}
	s.nextID++
	id = s.nextID
	s.byHash[key] = &entry{id: id, refcount: 1}
	s.buf.Place(id, bm)
	return id, true
}

// Len returns the number of distinct color-classes assigned so far.
func (s *Store) Len() uint64 { return s.nextID }

// Reset clears the dedup map and id counter but keeps the backing buffer
// and its contents; ids assigned after a Reset start again at 1.
func (s *Store) Reset() {
	s.byHash = make(map[hashKey]*entry)
	s.nextID = 0
}

// Refcounts returns the current id -> refcount mapping, read-only, for
// the sampling phase's decreasing-refcount reordering.
func (s *Store) Refcounts() map[uint64]uint64 {
	out := make(map[uint64]uint64, len(s.byHash))
	for _, e := range s.byHash {
		out[e.id] = e.refcount
	}
	return out
}

// Reassign forces id to replace oldID for whichever hash currently maps
// to oldID, used when the sampling-phase reshuffle renumbers ids by
// decreasing refcount. Keeping refcount intact.
func (s *Store) Reassign(oldID, newID uint64) {
	for _, e := range s.byHash {
		if e.id == oldID {
			e.id = newID
			return
		}
	}
}

// ReorderByRefcount implements spec.md §4.4's sampling-phase reorder: the
// caller reorders eqclass_map by decreasing refcount and re-issues ids
// 1..|map|. Returns old id -> new id and applies the renumbering to this
// store in place.
func (s *Store) ReorderByRefcount() map[uint64]uint64 {
	type pair struct {
		old uint64
		rc  uint64
	}
	pairs := make([]pair, 0, len(s.byHash))
	for _, e := range s.byHash {
		pairs = append(pairs, pair{e.id, e.refcount})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].rc != pairs[j].rc {
			return pairs[i].rc > pairs[j].rc
		}
		return pairs[i].old < pairs[j].old
	})
	oldToNew := make(map[uint64]uint64, len(pairs))
	for i, p := range pairs {
		oldToNew[p.old] = uint64(i + 1)
	}
	for _, e := range s.byHash {
		e.id = oldToNew[e.id]
	}
	return oldToNew
}

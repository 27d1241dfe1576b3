package samples

import (
	"github.com/dgryski/go-boomphf"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Sealed wraps a Registry with a minimal perfect hash fast-path for
// name->id lookups at query time, layered under the immutable-radix
// index: the radix tree stays the source of truth (and the only
// structure built while the registry is still being assembled), while
// Seal builds an MPH over the already-known key set once construction
// finishes, for O(1) lookups during the query hot path.
type Sealed struct {
	*Registry
	mph     *boomphf.H
	idByMPH []uint64 // mph slot (1-indexed) -> sample id
}

// Seal builds the MPH fast-path over r's names. Call once a registry is
// complete and will no longer be mutated.
func Seal(r *Registry) *Sealed {
	keys := make([]uint64, 0, r.Len())
	idOf := make(map[uint64]uint64, r.Len())
	for id := uint64(1); id <= uint64(r.Len()); id++ {
		name := r.names[id]
		k := fnv1a(name)
		keys = append(keys, k)
		idOf[k] = id
	}

	mph := boomphf.New(2.0, keys)
	idByMPH := make([]uint64, len(keys)+1)
	for k, id := range idOf {
		slot := mph.Query(k)
		errutil.BugOn(slot < 1 || slot > uint64(len(keys)), "samples: mph slot %d out of range", slot)
		idByMPH[slot] = id
	}
	return &Sealed{Registry: r, mph: mph, idByMPH: idByMPH}
}

// FastID resolves name to an id via the MPH fast-path, falling back to
// the radix tree if the MPH reports a slot whose key doesn't actually
// match (a false-positive membership query on an unseen name).
func (s *Sealed) FastID(name string) (uint64, bool) {
	slot := s.mph.Query(fnv1a(name))
	if slot < 1 || slot > uint64(len(s.idByMPH)-1) {
		return s.Registry.ID(name)
	}
	id := s.idByMPH[slot]
	if got, _ := s.Registry.Name(id); got != name {
		return s.Registry.ID(name)
	}
	return id, true
}

// fnv1a hashes a name into the uint64 key space boomphf expects.
func fnv1a(s string) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

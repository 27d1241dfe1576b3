// Package filter is the facade over the approximate-membership filter
// (spec.md's "counting quotient filter", out of scope as a collaborator):
// construction, keyed insert/query, forward iteration in hash order, and
// serialize/mmap-open. Two concrete key widths are supported (Filter64,
// Filter128) as two separate concrete types with no shared interface,
// matching DESIGN NOTES §9's 64-bit/128-bit monomorphisation rather than
// a generic.
package filter

import (
	"bufio"
	"encoding/binary"
	"os"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/dchest/siphash"
	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/xxh3"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// HashMode selects the keyed hash function used to place a key into a
// slot. Two modes are offered because the teacher's dependency closure
// carries two unrelated hash primitives (xxh3, siphash) and the facade's
// contract explicitly parameterises hash-mode at construction time.
type HashMode uint8

const (
	HashXXH3 HashMode = iota
	HashSipHash
)

// Config parameterises Filter construction per spec.md §4.1:
// construct(slots, key-bits, hash-mode, seed, path).
type Config struct {
	QuotientBits int // number of slots = 1 << QuotientBits
	KeyBits      int // 64 (Filter64) — present for the facade's contract
	Mode         HashMode
	Seed         uint64
}

// Iterator walks a Filter64's occupied slots in ascending HashOf(key)
// order, a stable total order over inserted keys regardless of insertion
// order or table size. Slot index alone is not that order (a slot is the
// hash masked to the table size, shifted by linear probing), so Iterate
// sorts a snapshot of the occupied slots.
type Iterator struct {
	f   *Filter64
	pos int
}

// Next returns the next (key, value) pair in hash order, or ok=false when
// exhausted.
func (it *Iterator) Next() (key uint64, value uint32, ok bool) {
	for it.pos < len(it.f.slots) {
		s := it.f.slots[it.pos]
		it.pos++
		if s.used {
			return s.key, s.value, true
		}
	}
	return 0, 0, false
}

// HashOf recomputes the full (unmasked-by-table-size) hash of key under
// this filter's configured hash-mode and seed. Two filters built with the
// same seed/mode — as every per-sample filter feeding one build is — give
// equal hashes to equal keys regardless of each filter's own table size,
// which is what lets the N-way constructor's heap compare across
// differently-sized inputs.
func (f *Filter64) HashOf(key uint64) uint64 { return f.hash(key) }

type slot64 struct {
	used  bool
	key   uint64
	value uint32
}

// Filter64 is the 64-bit-key concrete filter facade: a quotient-addressed
// open-addressing table with linear probing. value 0 means absent (a slot
// is either unused or holds a value > 0); this mirrors spec.md §3's "value
// 0 ≡ absent; value v > 0 ≡ color-class id v".
type Filter64 struct {
	cfg   Config
	slots []slot64
	occ   *bitset.BitSet
	count uint64
	path  string
}

// New constructs an empty Filter64 with 1<<cfg.QuotientBits slots.
func New(cfg Config) *Filter64 {
	errutil.BugOn(cfg.QuotientBits <= 0, "filter: QuotientBits must be positive, got %d", cfg.QuotientBits)
	n := uint64(1) << uint(cfg.QuotientBits)
	return &Filter64{
		cfg:   cfg,
		slots: make([]slot64, n),
		occ:   bitset.New(uint(n)),
	}
}

func (f *Filter64) hash(key uint64) uint64 {
	switch f.cfg.Mode {
	case HashSipHash:
		var k [16]byte
		binary.LittleEndian.PutUint64(k[:8], f.cfg.Seed)
		binary.LittleEndian.PutUint64(k[8:], f.cfg.Seed^0x9e3779b97f4a7c15)
		return siphash.Hash(binary.LittleEndian.Uint64(k[:8]), binary.LittleEndian.Uint64(k[8:]), keyBytes(key))
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], key^f.cfg.Seed)
		return xxh3.Hash(b[:])
	}
}

func keyBytes(key uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return b[:]
}

func (f *Filter64) slotIndex(key uint64) uint64 {
	return f.hash(key) & uint64(len(f.slots)-1)
}

// loadFactor above which Insert triggers an auto-resize.
const loadFactor = 0.85

// Insert places key -> value. Inserting a key that is already present
// with a non-zero value is fatal (spec.md §3: "A k-mer is inserted at
// most once; repeat insertion is a fatal error").
func (f *Filter64) Insert(key uint64, value uint32) {
	errutil.BugOn(value == 0, "filter: value 0 is reserved for absent, cannot insert it")
	if float64(f.count+1) >= loadFactor*float64(len(f.slots)) {
		f.resize()
	}
	idx := f.probe(key, true)
	s := &f.slots[idx]
	errutil.BugOn(s.used && s.key == key, "filter: duplicate insert of key %d (already color %d)", key, s.value)
	s.used = true
	s.key = key
	s.value = value
	f.occ.Set(uint(idx))
	f.count++
}

// probe returns the slot index for key: the slot holding key if present,
// otherwise the first free slot found by linear probing from its home
// slot. forInsert controls whether probing stops at a free slot (insert)
// or only at a matching key / exhausted table (query).
func (f *Filter64) probe(key uint64, forInsert bool) uint64 {
	n := uint64(len(f.slots))
	start := f.slotIndex(key)
	for i := uint64(0); i < n; i++ {
		idx := (start + i) % n
		s := &f.slots[idx]
		if !s.used {
			return idx
		}
		if s.key == key {
			return idx
		}
	}
	errutil.Bug("filter: table full, resize should have prevented this")
	return 0
}

// resize doubles the slot count and rehashes every occupied slot. A
// resize that still cannot accommodate the table (pathological — should
// not happen given loadFactor) is fatal per spec.md §4.1's "auto-resize
// on full, with fatal error if resize fails".
func (f *Filter64) resize() {
	old := f.slots
	f.cfg.QuotientBits++
	f.slots = make([]slot64, uint64(1)<<uint(f.cfg.QuotientBits))
	f.occ = bitset.New(uint(len(f.slots)))
	f.count = 0
	for _, s := range old {
		if s.used {
			f.Insert(s.key, s.value)
		}
	}
	errutil.BugOn(f.count != uint64(f.occ.Count()), "filter: resize corrupted occupancy bitset")
}

// Query returns the value stored for key, or 0 if absent.
func (f *Filter64) Query(key uint64) uint32 {
	idx := f.probe(key, false)
	s := &f.slots[idx]
	if s.used && s.key == key {
		return s.value
	}
	return 0
}

// Iterate returns a forward iterator over (key, value) pairs in hash
// order, over a snapshot of the keys present at the time of the call.
func (f *Filter64) Iterate() *Iterator {
	var used []slot64
	for _, s := range f.slots {
		if s.used {
			used = append(used, s)
		}
	}
	sort.Slice(used, func(i, j int) bool { return f.hash(used[i].key) < f.hash(used[j].key) })
	return &Iterator{f: &Filter64{cfg: f.cfg, slots: used}}
}

// Len returns the number of keys currently stored.
func (f *Filter64) Len() uint64 { return f.count }

// Config returns the construction parameters this filter was built with.
func (f *Filter64) Config() Config { return f.cfg }

// SlotCount returns the number of slots in the table, the upper bound for
// range-partitioned parallel iteration (spec.md §5: "read-only lock-free
// parallel iteration over disjoint hash ranges").
func (f *Filter64) SlotCount() int { return len(f.slots) }

// At returns the (key, value, used) of slot i directly, letting a caller
// partition [0, SlotCount()) into disjoint worker ranges without going
// through Iterate's sequential cursor.
func (f *Filter64) At(i int) (key uint64, value uint32, used bool) {
	s := f.slots[i]
	return s.key, s.value, s.used
}

const fileMagic = uint32(0x4d415453) // "MATS"

// Serialize writes the filter to path: a small header followed by the
// raw slot array, so Open can mmap it back without re-hashing anything.
func (f *Filter64) Serialize(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, fileMagic))
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, uint32(f.cfg.QuotientBits)))
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, uint32(f.cfg.KeyBits)))
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, uint32(f.cfg.Mode)))
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, f.cfg.Seed))
	errutil.FatalIf(binary.Write(w, binary.LittleEndian, f.count))
	for _, s := range f.slots {
		errutil.FatalIf(binary.Write(w, binary.LittleEndian, s.used))
		errutil.FatalIf(binary.Write(w, binary.LittleEndian, s.key))
		errutil.FatalIf(binary.Write(w, binary.LittleEndian, s.value))
	}
	errutil.FatalIf(w.Flush())
	return nil
}

// Open mmaps a filter previously written by Serialize, read-only. Sealed
// filters are read-only and safe for lock-free parallel iteration over
// disjoint ranges, per spec.md §5.
func Open(path string) (*Filter64, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	r := sliceReader{data: []byte(m)}
	magic := r.u32()
	errutil.BugOn(magic != fileMagic, "filter: bad magic in %s", path)
	qbits := r.u32()
	keyBits := r.u32()
	mode := r.u32()
	seed := r.u64()
	count := r.u64()
	n := uint64(1) << uint(qbits)
	slots := make([]slot64, n)
	for i := range slots {
		slots[i].used = r.b()
		slots[i].key = r.u64()
		slots[i].value = r.u32()
	}
	f := &Filter64{
		cfg:   Config{QuotientBits: int(qbits), KeyBits: int(keyBits), Mode: HashMode(mode), Seed: seed},
		slots: slots,
		occ:   bitset.New(uint(n)),
		count: count,
		path:  path,
	}
	for i, s := range slots {
		if s.used {
			f.occ.Set(uint(i))
		}
	}
	closer := func() error {
		if err := m.Unmap(); err != nil {
			return err
		}
		return file.Close()
	}
	return f, closer, nil
}

// sliceReader walks a byte buffer sequentially; used by Open to decode
// the mmap'd header and slot array without allocating per-field readers.
type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *sliceReader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

func (r *sliceReader) b() bool {
	v := r.data[r.pos] != 0
	r.pos++
	return v
}

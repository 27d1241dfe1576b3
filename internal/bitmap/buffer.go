package bitmap

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hillbig/rsdic"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Buffer holds B*S bits in memory: B bitmaps of S bits each, the chunk
// that gets RRR-compressed and flushed as one sidecar file (spec.md
// §3/§4.2). B = floor(bitBudget / S).
type Buffer struct {
	s      int
	b      uint64
	words  []uint64
	placed uint64 // bitmaps placed into the current (unflushed) buffer
	fileNo uint64 // next buffer file index to write
	dir    string
	suffix string
}

// NewBuffer allocates a buffer for S-bit bitmaps under the given bit
// budget, writing flushed buffers as "<n>_<suffix>" inside dir.
func NewBuffer(s int, bitBudget uint64, dir, suffix string) *Buffer {
	errutil.BugOn(s <= 0, "bitmap: S must be positive, got %d", s)
	b := bitBudget / uint64(s)
	if b == 0 {
		b = 1
	}
	return &Buffer{
		s:      s,
		b:      b,
		words:  make([]uint64, wordsForBits(b*uint64(s))),
		dir:    dir,
		suffix: suffix,
	}
}

func wordsForBits(n uint64) uint64 { return (n + 63) / 64 }

// BufferSize returns B, the number of bitmaps per buffer.
func (buf *Buffer) BufferSize() uint64 { return buf.b }

// Place copies bm's S bits into the slot for id (1-based), per spec.md
// §4.2. Bit-by-bit rather than the C++ original's word-wise copy, since S
// is rarely 64-aligned.
func (buf *Buffer) Place(id uint64, bm Bitmap) {
	errutil.BugOnNotEq(bm.Size(), buf.s)
	slot := (id - 1) % buf.b
	base := slot * uint64(buf.s)
	for i := 0; i < buf.s; i++ {
		if bm.Test(i) {
			pos := base + uint64(i)
			buf.words[pos/64] |= uint64(1) << uint(pos%64)
		}
	}
	if slot+1 > buf.placed {
		buf.placed = slot + 1
	}
}

// Flush RRR-compresses the occupied portion of the buffer and writes it
// as "<n>_<suffix>", then resets for the next buffer. Returns the path
// written.
func (buf *Buffer) Flush() string {
	occupiedBits := buf.placed * uint64(buf.s)
	rs := rsdic.New()
	for i := uint64(0); i < occupiedBits; i++ {
		bit := buf.words[i/64]&(uint64(1)<<uint(i%64)) != 0
		rs.PushBack(bit)
	}

	name := fmt.Sprintf("%d_%s", buf.fileNo, buf.suffix)
	path := filepath.Join(buf.dir, name)
	f, err := os.Create(path)
	errutil.FatalIf(err)
	defer f.Close()

	errutil.FatalIf(binary.Write(f, binary.LittleEndian, uint32(buf.s)))
	errutil.FatalIf(binary.Write(f, binary.LittleEndian, buf.placed))
	rsBytes, err := rs.MarshalBinary()
	errutil.FatalIf(err)
	_, err = f.Write(rsBytes)
	errutil.FatalIf(err)

	buf.fileNo++
	for i := range buf.words {
		buf.words[i] = 0
	}
	buf.placed = 0
	return path
}

// Placed returns how many bitmaps sit in the current, unflushed buffer.
func (buf *Buffer) Placed() uint64 { return buf.placed }

// GetLocal reads back the bitmap placed at local slot (0-based) in the
// current, still-in-memory buffer. Used by the sampling-phase reshuffle,
// which only ever reorders within a single not-yet-flushed buffer.
func (buf *Buffer) GetLocal(slot uint64) Bitmap {
	bm := New(buf.s)
	base := slot * uint64(buf.s)
	for i := 0; i < buf.s; i++ {
		pos := base + uint64(i)
		if buf.words[pos/64]&(uint64(1)<<uint(pos%64)) != 0 {
			bm.Set(i)
		}
	}
	return bm
}

// Reshuffle rewrites the in-memory buffer so that the bitmap previously
// at id old now sits at id oldToNew[old], per spec.md
// §4.4's sampling-phase reorder: "each bitmap is copied from its old slot
// to the new slot dictated by the caller's map". Every id in [1, placed]
// must appear in oldToNew or this panics (spec.md's InvariantViolated
// "missing bitmap during reshuffle").
func (buf *Buffer) Reshuffle(oldToNew map[uint64]uint64) {
	fresh := make([]uint64, len(buf.words))
	for old := uint64(1); old <= buf.placed; old++ {
		newID, ok := oldToNew[old]
		errutil.BugOn(!ok, "bitmap: missing bitmap for id %d during reshuffle", old)
		bm := buf.GetLocal(old - 1)
		newSlot := (newID - 1) % buf.b
		base := newSlot * uint64(buf.s)
		for i := 0; i < buf.s; i++ {
			if bm.Test(i) {
				pos := base + uint64(i)
				fresh[pos/64] |= uint64(1) << uint(pos%64)
			}
		}
	}
	buf.words = fresh
}

// ReaderForBuffer loads a flushed "<n>_<suffix>" file for random-access
// bit reads (used by the MST builder's weighting pass and by the color
// decoder's sidecar comparisons).
type ReaderForBuffer struct {
	s      int
	placed uint64
	rs     *rsdic.RSDic
}

// OpenBuffer loads buffer file number n from dir.
func OpenBuffer(dir, suffix string, n uint64) (*ReaderForBuffer, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d_%s", n, suffix))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s uint32
	var placed uint64
	errutil.FatalIf(binary.Read(f, binary.LittleEndian, &s))
	errutil.FatalIf(binary.Read(f, binary.LittleEndian, &placed))

	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	rs := rsdic.New()
	if err := rs.UnmarshalBinary(rest); err != nil {
		return nil, err
	}
	return &ReaderForBuffer{s: int(s), placed: placed, rs: rs}, nil
}

// Bitmap reconstructs the bitmap stored at local slot (0-based within
// this buffer).
func (r *ReaderForBuffer) Bitmap(slot uint64) Bitmap {
	errutil.BugOn(slot >= r.placed, "bitmap: slot %d not in buffer (placed=%d)", slot, r.placed)
	bm := New(r.s)
	base := slot * uint64(r.s)
	for i := 0; i < r.s; i++ {
		if r.rs.Bit(base + uint64(i)) {
			bm.Set(i)
		}
	}
	return bm
}

// Placed returns the number of bitmaps actually stored in this buffer
// (the last buffer of a table may be partial).
func (r *ReaderForBuffer) Placed() uint64 { return r.placed }

// Table is the logical, possibly multi-file, array of bitmaps indexed by
// color-class id, implementing the "(a-1) div B" / "(a-1) mod B"
// addressing rule from spec.md §3.
type Table struct {
	dir    string
	suffix string
	b      uint64
	s      int
}

// NewTable opens a table view over buffer files already flushed to dir.
func NewTable(dir, suffix string, b uint64, s int) *Table {
	return &Table{dir: dir, suffix: suffix, b: b, s: s}
}

// Get loads the bitmap for color-class id (1-based), opening whichever
// buffer file holds it.
func (t *Table) Get(id uint64) (Bitmap, error) {
	bufNo := (id - 1) / t.b
	slot := (id - 1) % t.b
	r, err := OpenBuffer(t.dir, t.suffix, bufNo)
	if err != nil {
		return Bitmap{}, err
	}
	return r.Bitmap(slot), nil
}

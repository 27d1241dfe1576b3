// Package bitutil provides the packed, fixed-width integer vector used
// for the MST's parent and delta arrays. It is adapted from the teacher's
// word-packed bit-string storage technique (Uint64ArrayBitString's
// data []uint64 + bit-indexed read/write), generalised from "one bit per
// logical position" to "W bits per logical element" so a color-class id
// or a sample index can be stored at less than a full machine word.
package bitutil

import "github.com/KoyanoBunsho/mantis/internal/errutil"

// PackedUintVector stores n elements of width bits each (bits in [1,64])
// in a dense []uint64 backing array, the same "word/bit offset" indexing
// the teacher's Uint64ArrayBitString uses for single bits, generalised to
// multi-bit fields.
type PackedUintVector struct {
	data  []uint64
	width uint
	n     uint64
}

// NewPackedUintVector allocates a vector of n elements, each width bits
// wide. width must cover the largest value ever stored (callers pick
// width = bits.Len64(maxValue)).
func NewPackedUintVector(n uint64, width uint) *PackedUintVector {
	errutil.BugOn(width == 0 || width > 64, "bitutil: width %d out of range", width)
	totalBits := n * uint64(width)
	numWords := (totalBits + 63) / 64
	return &PackedUintVector{
		data:  make([]uint64, numWords),
		width: width,
		n:     n,
	}
}

// Len returns the number of elements.
func (v *PackedUintVector) Len() uint64 { return v.n }

// Width returns the per-element bit width.
func (v *PackedUintVector) Width() uint { return v.width }

// Get reads the element at index i.
func (v *PackedUintVector) Get(i uint64) uint64 {
	errutil.BugOn(i >= v.n, "bitutil: index %d out of range [0,%d)", i, v.n)
	bitPos := i * uint64(v.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	lowBits := 64 - bitOff
	var val uint64
	if uint64(v.width) <= lowBits {
		val = (v.data[wordIdx] >> bitOff) & mask(v.width)
	} else {
		lo := v.data[wordIdx] >> bitOff
		hi := v.data[wordIdx+1] << lowBits
		val = (lo | hi) & mask(v.width)
	}
	return val
}

// Set writes value (must fit in width bits) at index i.
func (v *PackedUintVector) Set(i uint64, value uint64) {
	errutil.BugOn(i >= v.n, "bitutil: index %d out of range [0,%d)", i, v.n)
	errutil.BugOn(value > mask(v.width), "bitutil: value %d does not fit in %d bits", value, v.width)
	bitPos := i * uint64(v.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64
	m := mask(v.width)

	v.data[wordIdx] &^= m << bitOff
	v.data[wordIdx] |= (value & m) << bitOff

	lowBits := 64 - bitOff
	if uint64(v.width) > lowBits {
		spill := uint(v.width) - uint(lowBits)
		spillMask := mask(spill)
		v.data[wordIdx+1] &^= spillMask
		v.data[wordIdx+1] |= (value >> lowBits) & spillMask
	}
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Words exposes the backing array, e.g. for serialization.
func (v *PackedUintVector) Words() []uint64 { return v.data }

// Package bitmap implements the sample-set bitmap (spec.md §3) and the
// bit-packed buffer table that groups bitmaps into RRR-compressed sidecar
// files (spec.md §4.2, component C2).
package bitmap

import (
	"math/bits"

	"github.com/zeebo/xxh3"
)

// Bitmap is a fixed-width S-bit sample set, packed one bit per sample
// into 64-bit words. Bit i set means sample i contains the k-mer.
type Bitmap struct {
	words []uint64
	s     int
}

// New allocates a zeroed Bitmap of s bits.
func New(s int) Bitmap {
	return Bitmap{words: make([]uint64, (s+63)/64), s: s}
}

// Size returns the number of samples S.
func (b Bitmap) Size() int { return b.s }

// Set sets bit i (sample i is present).
func (b Bitmap) Set(i int) {
	b.words[i/64] |= uint64(1) << uint(i%64)
}

// Test reports whether bit i is set.
func (b Bitmap) Test(i int) bool {
	return b.words[i/64]&(uint64(1)<<uint(i%64)) != 0
}

// Words exposes the backing word array (used by the color-class store's
// content hash and by the buffer's word-wise Place copy).
func (b Bitmap) Words() []uint64 { return b.words }

// trailingMask masks off the unused high bits of the last word so that
// two bitmaps of the same S compare equal regardless of what garbage
// might otherwise sit past bit S-1 (spec.md §8: "S not a multiple of 64:
// last word of each bitmap is masked; trailing bits never read").
func (b Bitmap) trailingMask() uint64 {
	rem := uint(b.s % 64)
	if rem == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << rem) - 1
}

// maskedLastWord returns the last word with trailing bits cleared.
func (b Bitmap) maskedLastWord() uint64 {
	if len(b.words) == 0 {
		return 0
	}
	return b.words[len(b.words)-1] & b.trailingMask()
}

// Hash128 is the content-address key used by the color-class dedup map
// (spec.md §3: hash128(bitmap) -> (id, refcount)). Uses xxh3's 128-bit
// variant as the teacher's 128-bit hash of choice.
func (b Bitmap) Hash128() (hi, lo uint64) {
	buf := make([]byte, 0, len(b.words)*8)
	for i, w := range b.words {
		if i == len(b.words)-1 {
			w = b.maskedLastWord()
		}
		buf = appendU64(buf, w)
	}
	h := xxh3.Hash128(buf)
	return h.Hi, h.Lo
}

func appendU64(buf []byte, w uint64) []byte {
	return append(buf,
		byte(w), byte(w>>8), byte(w>>16), byte(w>>24),
		byte(w>>32), byte(w>>40), byte(w>>48), byte(w>>56))
}

// Equal compares two bitmaps of the same size bit-for-bit.
func (b Bitmap) Equal(o Bitmap) bool {
	if b.s != o.s {
		return false
	}
	for i := 0; i < len(b.words)-1; i++ {
		if b.words[i] != o.words[i] {
			return false
		}
	}
	return b.maskedLastWord() == o.maskedLastWord()
}

// HammingDistance returns popcount(a XOR b), the MST edge weight between
// two color-classes (spec.md §4.6).
func HammingDistance(a, b Bitmap) int {
	n := len(a.words)
	dist := 0
	for i := 0; i < n-1; i++ {
		dist += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	if n > 0 {
		dist += bits.OnesCount64(a.maskedLastWord() ^ b.maskedLastWord())
	}
	return dist
}

// DeltaList returns the sorted sample indices where a and b differ — the
// XOR-list stored per MST node (spec.md §3's delta[]).
func DeltaList(a, b Bitmap) []uint32 {
	var out []uint32
	for i := 0; i < a.s; i++ {
		if a.Test(i) != b.Test(i) {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Zero returns an all-absent bitmap of s bits, the synthetic root color.
func Zero(s int) Bitmap { return New(s) }

// Concat lays b after a, used by the MST merger (spec.md §4.7) to treat
// a pair-index color's two halves as one bitmap over samples_I1 |
// samples_I2 so that hamming distance and delta-list computation over
// the combined bitmap are exactly the sum/union of the two halves'.
func Concat(a, b Bitmap) Bitmap {
	out := New(a.s + b.s)
	for i := 0; i < a.s; i++ {
		if a.Test(i) {
			out.Set(i)
		}
	}
	for i := 0; i < b.s; i++ {
		if b.Test(i) {
			out.Set(a.s + i)
		}
	}
	return out
}

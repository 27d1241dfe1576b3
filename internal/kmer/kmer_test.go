package kmer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePacksTwoBitsPerBase(t *testing.T) {
	k := Encode([]byte("ACGT"))
	require.Equal(t, Kmer64(0b00_01_10_11), k)
}

func TestEncodeLowercase(t *testing.T) {
	upper := Encode([]byte("ACGT"))
	lower := Encode([]byte("acgt"))
	require.Equal(t, upper, lower)
}

func TestEncodeInvalidBasePanics(t *testing.T) {
	require.Panics(t, func() { Encode([]byte("ACGN")) })
}

func TestEncodeEmptyOrTooLongPanics(t *testing.T) {
	require.Panics(t, func() { Encode(nil) })
	long := make([]byte, 33)
	for i := range long {
		long[i] = 'A'
	}
	require.Panics(t, func() { Encode(long) })
}

func TestReverseComplement(t *testing.T) {
	k := Encode([]byte("ACGT"))
	rc := ReverseComplement(k, 4)
	require.Equal(t, Encode([]byte("ACGT")), rc, "ACGT is its own reverse complement")

	k2 := Encode([]byte("AAAA"))
	rc2 := ReverseComplement(k2, 4)
	require.Equal(t, Encode([]byte("TTTT")), rc2)
}

func TestCanonicalPicksLexicographicMinimum(t *testing.T) {
	fwd := Encode([]byte("AAAA"))
	canon := Canonical(fwd, 4)
	require.Equal(t, fwd, canon, "AAAA already the minimum of {AAAA, TTTT}")

	rev := Encode([]byte("TTTT"))
	canonRev := Canonical(rev, 4)
	require.Equal(t, fwd, canonRev, "TTTT canonicalizes to the same value as AAAA")
}

func TestNeighboursProducesEightDistinctExtensions(t *testing.T) {
	k := Encode([]byte("ACGT"))
	n := Neighbours(k, 4)

	// forward: drop leading base, append each of the 4 bases
	require.Equal(t, Encode([]byte("CGTA")), n[0])
	require.Equal(t, Encode([]byte("CGTC")), n[1])
	require.Equal(t, Encode([]byte("CGTG")), n[2])
	require.Equal(t, Encode([]byte("CGTT")), n[3])

	// backward: drop trailing base, prepend each of the 4 bases
	require.Equal(t, Encode([]byte("AACG")), n[4])
	require.Equal(t, Encode([]byte("CACG")), n[5])
	require.Equal(t, Encode([]byte("GACG")), n[6])
	require.Equal(t, Encode([]byte("TACG")), n[7])
}

func TestSecondMinimizerAtExtremityIsInvalid(t *testing.T) {
	_, ok := SecondMinimizer([]uint64{1, 5, 9}, 0)
	require.False(t, ok)
	_, ok = SecondMinimizer([]uint64{1, 5, 9}, 2)
	require.False(t, ok)
}

func TestSecondMinimizerInteriorPosition(t *testing.T) {
	val, ok := SecondMinimizer([]uint64{9, 1, 7, 3, 8}, 1)
	require.True(t, ok)
	require.Equal(t, uint64(3), val, "smallest value strictly greater than the minimum 1")
}

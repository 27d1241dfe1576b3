package colorstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
)

func bm(s int, bits ...int) bitmap.Bitmap {
	b := bitmap.New(s)
	for _, i := range bits {
		b.Set(i)
	}
	return b
}

func TestTryAddAssignsFirstSeenIDsAndDedups(t *testing.T) {
	buf := bitmap.NewBuffer(4, 1<<20, t.TempDir(), "eqclass")
	s := New(buf)

	id1, isNew1 := s.TryAdd(bm(4, 0, 1))
	require.True(t, isNew1)
	require.Equal(t, uint64(1), id1)

	id2, isNew2 := s.TryAdd(bm(4, 2))
	require.True(t, isNew2)
	require.Equal(t, uint64(2), id2)

	idRepeat, isNewRepeat := s.TryAdd(bm(4, 0, 1))
	require.False(t, isNewRepeat)
	require.Equal(t, id1, idRepeat)

	require.Equal(t, uint64(2), s.Len())
}

func TestRefcountsTrackRepeatedInserts(t *testing.T) {
	buf := bitmap.NewBuffer(4, 1<<20, t.TempDir(), "eqclass")
	s := New(buf)

	id, _ := s.TryAdd(bm(4, 0))
	s.TryAdd(bm(4, 0))
	s.TryAdd(bm(4, 0))
	s.TryAdd(bm(4, 1))

	rc := s.Refcounts()
	require.Equal(t, uint64(3), rc[id])
}

func TestReorderByRefcountRenumbersByDescendingCount(t *testing.T) {
	buf := bitmap.NewBuffer(4, 1<<20, t.TempDir(), "eqclass")
	s := New(buf)

	idRare, _ := s.TryAdd(bm(4, 0))   // refcount 1
	idCommon, _ := s.TryAdd(bm(4, 1)) // refcount 3
	s.TryAdd(bm(4, 1))
	s.TryAdd(bm(4, 1))

	oldToNew := s.ReorderByRefcount()
	require.Equal(t, uint64(1), oldToNew[idCommon], "most-referenced id becomes id 1")
	require.Equal(t, uint64(2), oldToNew[idRare])

	rc := s.Refcounts()
	require.Equal(t, uint64(3), rc[oldToNew[idCommon]])
	require.Equal(t, uint64(1), rc[oldToNew[idRare]])
}

func TestResetClearsDedupMapButKeepsCounterAtZero(t *testing.T) {
	buf := bitmap.NewBuffer(4, 1<<20, t.TempDir(), "eqclass")
	s := New(buf)
	s.TryAdd(bm(4, 0))
	s.Reset()
	require.Equal(t, uint64(0), s.Len())

	id, isNew := s.TryAdd(bm(4, 0))
	require.True(t, isNew, "reset forgets prior dedup state")
	require.Equal(t, uint64(1), id)
}

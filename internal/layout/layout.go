// Package layout centralises the on-disk file naming rules for a sealed
// index directory (spec.md §6), so every component goes through one
// place rather than building paths ad hoc.
package layout

import (
	"fmt"
	"path/filepath"
)

const (
	mainFilterName   = "main.filter"
	sampleListName   = "sampleid.lst"
	parentsName      = "parents.bv"
	boundariesName   = "boundaries.bv"
	deltasName       = "deltas.bv"
	newIDsName       = "newID2oldIDs"
	minimizerBndName = "minimizer_boundary"
	manifestName     = "manifest.msgpack"
	eqclassSuffix    = "eqclass"
)

// Paths resolves every well-known file under a single index directory.
type Paths struct {
	Dir string
}

// New returns a Paths rooted at dir.
func New(dir string) Paths { return Paths{Dir: dir} }

func (p Paths) path(name string) string { return filepath.Join(p.Dir, name) }

// MainFilter is the serialized AMQ filter file (C1).
func (p Paths) MainFilter() string { return p.path(mainFilterName) }

// SampleList is the ASCII `<id> <name>` sample registry (A6).
func (p Paths) SampleList() string { return p.path(sampleListName) }

// Parents is the packed int-vector of MST parent ids.
func (p Paths) Parents() string { return p.path(parentsName) }

// Boundaries is the bit vector marking delta-list ends.
func (p Paths) Boundaries() string { return p.path(boundariesName) }

// Deltas is the packed int-vector of sample indices.
func (p Paths) Deltas() string { return p.path(deltasName) }

// NewID2OldIDs is the MST merger's pair-id sidecar (C7).
func (p Paths) NewID2OldIDs() string { return p.path(newIDsName) }

// MinimizerBoundary is the blocked-filter-mode minimizer→block index.
func (p Paths) MinimizerBoundary() string { return p.path(minimizerBndName) }

// Manifest is the msgpack-encoded build summary (A3/A5).
func (p Paths) Manifest() string { return p.path(manifestName) }

// BufferFile returns the n-th RRR-compressed bitmap buffer file's path,
// `<n>_<eqclass-suffix>`.
func (p Paths) BufferFile(n uint64) string {
	return p.path(fmt.Sprintf("%d_%s", n, eqclassSuffix))
}

// EqclassSuffix exposes the suffix used to recognise buffer files, for
// directory scans that need to enumerate them without going through
// BufferFile.
func (p Paths) EqclassSuffix() string { return eqclassSuffix }

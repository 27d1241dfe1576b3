// Package samples implements the sample registry (spec.md §6, A6): the
// ordered, write-once id<->name mapping persisted as sampleid.lst.
package samples

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/KoyanoBunsho/mantis/internal/errutil"
)

// Registry is the sealed id<->name index for one index directory. The
// name->id direction is served by an immutable radix tree, a natural fit
// since the registry is built once and only read afterwards.
type Registry struct {
	names []string // 1-indexed by id; names[0] unused
	tree  *iradix.Tree
}

// New builds a registry from an ordered list of sample names, assigning
// ids 1..len(names) in list order (first-seen order from the sample
// list file given to the build command).
func New(names []string) *Registry {
	txn := iradix.New().Txn()
	all := make([]string, len(names)+1)
	for i, n := range names {
		id := uint64(i + 1)
		all[id] = n
		txn.Insert([]byte(n), id)
	}
	return &Registry{names: all, tree: txn.Commit()}
}

// Name resolves an id to its sample name; the zero value means id is out
// of range.
func (r *Registry) Name(id uint64) (string, bool) {
	if id == 0 || id >= uint64(len(r.names)) {
		return "", false
	}
	return r.names[id], true
}

// ID resolves a sample name back to its id.
func (r *Registry) ID(name string) (uint64, bool) {
	v, ok := r.tree.Get([]byte(name))
	if !ok {
		return 0, false
	}
	return v.(uint64), true
}

// Len returns the number of registered samples.
func (r *Registry) Len() int { return len(r.names) - 1 }

// Write serialises the registry as ASCII lines `<id> <name>`, the
// sampleid.lst format from spec.md §6.
func Write(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, n := range names {
		if _, err := fmt.Fprintf(w, "%d %s\n", i+1, n); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Load reads a sampleid.lst file back into a Registry, trusting the file
// to be in ascending id order (the order Write produces).
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		errutil.BugOn(len(parts) != 2, "samples: malformed sampleid.lst line %q", line)
		id, err := strconv.ParseUint(parts[0], 10, 64)
		errutil.FatalIf(err)
		errutil.BugOnNotEq(id, uint64(len(names)+1))
		names = append(names, parts[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(names), nil
}

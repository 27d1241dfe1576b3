// Command mantis drives the build/merge/query pipeline described in
// spec.md: build a colored de Bruijn graph index from per-sample
// filters, merge two sealed indices' MSTs, or answer batch k-mer
// queries against a sealed index.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"

	"github.com/KoyanoBunsho/mantis/internal/bitmap"
	"github.com/KoyanoBunsho/mantis/internal/colorgraph"
	"github.com/KoyanoBunsho/mantis/internal/colorstore"
	"github.com/KoyanoBunsho/mantis/internal/decoder"
	"github.com/KoyanoBunsho/mantis/internal/errutil"
	"github.com/KoyanoBunsho/mantis/internal/filter"
	"github.com/KoyanoBunsho/mantis/internal/kmer"
	"github.com/KoyanoBunsho/mantis/internal/layout"
	"github.com/KoyanoBunsho/mantis/internal/logging"
	"github.com/KoyanoBunsho/mantis/internal/manifest"
	"github.com/KoyanoBunsho/mantis/internal/merge"
	"github.com/KoyanoBunsho/mantis/internal/mst"
	"github.com/KoyanoBunsho/mantis/internal/query"
	"github.com/KoyanoBunsho/mantis/internal/samples"
)

var log = logging.New()

func main() {
	defer recoverToExitCode()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "merge":
		runMerge(os.Args[2:])
	case "query":
		runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mantis <build|merge|query> [flags]")
}

// recoverToExitCode maps the fatal-condition panics documented in
// spec.md §7 (InvariantViolated/BadInput/IOError) to a non-zero exit
// code, per spec.md §6's "Build mode exit codes" contract.
func recoverToExitCode() {
	if r := recover(); r != nil {
		log.Fatal("%v", r)
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	sampleList := fs.String("i", "", "path to list file of per-sample filter paths")
	k := fs.Int("k", 31, "k-mer length")
	threads := fs.Int("t", 1, "thread count")
	outDir := fs.String("o", "", "output index directory")
	quotientBits := fs.Int("qbits", 16, "main filter quotient bits")
	fs.Parse(args)

	errutil.BugOn(*sampleList == "" || *outDir == "", "build: -i and -o are required")
	errutil.FatalIf(os.MkdirAll(*outDir, 0755))

	colorstring.Println("[blue]==>[reset] building index")
	stop := log.Phase("build")
	defer stop()

	samplePaths := readLines(*sampleList)

	sampleFilters := make([]*filter.Filter64, len(samplePaths))
	for i, p := range samplePaths {
		f, closer, err := filter.Open(p)
		errutil.FatalIf(err)
		defer closer()
		sampleFilters[i] = f
	}

	out := layout.New(*outDir)
	buf := bitmap.NewBuffer(len(samplePaths), 20_000_000, *outDir, out.EqclassSuffix())
	store := colorstore.New(buf)
	mainFilter := filter.New(filter.Config{QuotientBits: *quotientBits, KeyBits: 62, Mode: filter.HashXXH3})

	constructor := merge.New(sampleFilters, mainFilter, store, buf)
	constructor.Build()
	log.Info("color construction done: %s distinct colors", logging.Comma(constructor.ColorCount()))

	errutil.FatalIf(mainFilter.Serialize(out.MainFilter()))

	names := make([]string, len(samplePaths))
	for i, p := range samplePaths {
		names[i] = p
	}
	errutil.FatalIf(samples.Write(out.SampleList(), names))

	table := bitmap.NewTable(*outDir, out.EqclassSuffix(), buf.BufferSize(), len(samplePaths))

	numColors := constructor.ColorCount()
	enumParams := colorgraph.Params{K: 4, KLen: *k, Threads: *threads, ScratchDir: *outDir, NumColors: numColors}
	edges, _, err := colorgraph.Enumerate(mainFilter, enumParams)
	errutil.FatalIf(err)

	bar := progressbar.Default(int64(len(edges)))
	for range edges {
		bar.Add(1)
	}

	rootID := numColors + 1
	art := mst.Build(edges, table, rootID, len(samplePaths), *threads)
	errutil.FatalIf(art.Save(out.Parents(), out.Boundaries(), out.Deltas()))

	errutil.FatalIf(manifest.Write(out.Manifest(), manifest.Manifest{
		K:            *k,
		NumSamples:   len(samplePaths),
		NumColors:    constructor.ColorCount(),
		MSTWeight:    art.TotalWeight,
		QuotientBits: uint(*quotientBits),
		KeyBits:      62,
	}))

	colorstring.Println("[green]==>[reset] build complete")
}

func runMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	idxA := fs.String("1", "", "first sealed index directory")
	idxB := fs.String("2", "", "second sealed index directory")
	outDir := fs.String("o", "", "output index directory")
	fs.Parse(args)

	errutil.BugOn(*idxA == "" || *idxB == "" || *outDir == "", "merge: -1, -2, and -o are required")
	colorstring.Println("[blue]==>[reset] merging indices")
	log.Info("merging %s + %s -> %s", *idxA, *idxB, *outDir)

	errutil.Bug("merge: full pair-index construction is driven by the external AMQ provider and is out of this command's scope; see internal/mstmerge for the MST-combination step once a pair-index filter has been built")
}

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	indexDir := fs.String("i", "", "sealed index directory")
	queryPath := fs.String("q", "", "FASTA file of query sequences")
	k := fs.Int("k", 31, "k-mer length")
	lruSize := fs.Int("lru", 0, "per-query decoder LRU size (0 = default)")
	fs.Parse(args)

	errutil.BugOn(*indexDir == "" || *queryPath == "", "query: -i and -q are required")

	out := layout.New(*indexDir)
	mainFilter, closer, err := filter.Open(out.MainFilter())
	errutil.FatalIf(err)
	defer closer()

	reg, err := samples.Load(out.SampleList())
	errutil.FatalIf(err)

	man, err := manifest.Read(out.Manifest())
	errutil.FatalIf(err)

	rootID := man.NumColors + 1
	art, err := mst.Load(out.Parents(), out.Boundaries(), out.Deltas(), rootID, reg.Len())
	errutil.FatalIf(err)

	dec := decoder.New(art, *lruSize)
	surface := query.New(mainFilter, dec, nil)

	queries := readQueries(*queryPath, *k)
	colorstring.Println("[blue]==>[reset] running query")
	result := surface.Query(queries, *k)

	for i, hits := range result.PerSampleHits {
		if hits == 0 {
			continue
		}
		name, _ := reg.Name(uint64(i + 1))
		fmt.Printf("%s\t%d\n", name, hits)
	}
}

// readQueries extracts every klen-length k-mer, in the orientation it is
// read, from a FASTA file's sequence lines (lines not starting with '>');
// query.Surface.Query canonicalizes them.
func readQueries(path string, klen int) []kmer.Kmer64 {
	f, err := os.Open(path)
	errutil.FatalIf(err)
	defer f.Close()

	var out []kmer.Kmer64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '>' {
			continue
		}
		seq := []byte(line)
		for i := 0; i+klen <= len(seq); i++ {
			out = append(out, kmer.Encode(seq[i:i+klen]))
		}
	}
	errutil.FatalIf(sc.Err())
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	errutil.FatalIf(err)
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line != "" {
			out = append(out, line)
		}
	}
	errutil.FatalIf(sc.Err())
	return out
}

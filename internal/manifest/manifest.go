// Package manifest encodes the per-build summary (color count, sample
// count, phase timings) written alongside a sealed index directory, so
// downstream tools can sanity-check an index without re-deriving its
// stats.
package manifest

import (
	"os"
	"time"

	"github.com/ugorji/go/codec"
)

// Manifest is the msgpack-encoded build summary, A5/A3.
type Manifest struct {
	K            int           `codec:"k"`
	NumSamples   int           `codec:"num_samples"`
	NumColors    uint64        `codec:"num_colors"`
	MSTWeight    uint64        `codec:"mst_weight"`
	BuildTime    time.Duration `codec:"build_time_ns"`
	QuotientBits uint          `codec:"quotient_bits"`
	KeyBits      uint          `codec:"key_bits"`
}

var mh codec.MsgpackHandle

// Write encodes m to path using msgpack.
func Write(path string, m Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return codec.NewEncoder(f, &mh).Encode(m)
}

// Read decodes a manifest previously written by Write.
func Read(path string) (Manifest, error) {
	var m Manifest
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	err = codec.NewDecoder(f, &mh).Decode(&m)
	return m, err
}

// Package config holds the build/merge/query parameter structs (spec.md
// §6 "Inputs"), optionally overridden from a YAML file. cmd/mantis parses
// its own flags and does not load these files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// BuildConfig configures the C1-C6 build pipeline.
type BuildConfig struct {
	SampleListPath  string `yaml:"sample_list"`
	K               int    `yaml:"k"`
	QuotientBits    uint   `yaml:"quotient_bits"`
	KeyBits         uint   `yaml:"key_bits"`
	Threads         int    `yaml:"threads"`
	OutDir          string `yaml:"out_dir"`
	BufferBitBudget uint64 `yaml:"buffer_bit_budget"`
	MaxTmpEdges     uint64 `yaml:"max_tmp_edges"`
}

// MergeConfig configures the C7 MST merger.
type MergeConfig struct {
	IndexA  string `yaml:"index_a"`
	IndexB  string `yaml:"index_b"`
	OutDir  string `yaml:"out_dir"`
	Threads int    `yaml:"threads"`
	LRUSize int    `yaml:"lru_size"`
}

// QueryConfig configures the A7 query surface.
type QueryConfig struct {
	IndexDir  string `yaml:"index_dir"`
	QueryPath string `yaml:"query_path"`
	Threads   int    `yaml:"threads"`
	LRUSize   int    `yaml:"lru_size"`
}

// DefaultBuildConfig returns spec.md's implied defaults before any flag
// or file override is applied.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		K:               31,
		QuotientBits:    16,
		KeyBits:         62,
		Threads:         1,
		BufferBitBudget: 20_000_000, // L, the bit budget per buffer file
		MaxTmpEdges:     31_250_000,
	}
}

// LoadBuildConfig decodes a YAML file starting from the built-in
// defaults. Flag overrides must be applied after this call, never
// before, since yaml.Unmarshal only touches fields present in the file.
func LoadBuildConfig(path string) (BuildConfig, error) {
	cfg := DefaultBuildConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

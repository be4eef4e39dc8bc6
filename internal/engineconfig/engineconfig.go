// Package engineconfig loads the engine's tunables: cost weights, the
// search mutation budget ratio, and the preview row limit. spec.md
// fixes these as constants; this package exposes them as a TOML
// document (github.com/BurntSushi/toml, already a teacher dependency)
// so a host can override them without recompiling, the same way
// internal/formula loads its TOML formula files.
package engineconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the engine's tunable parameters.
type Config struct {
	// Cost weights, applied to the scaled loss/storage/refs components
	// (see internal/cost).
	WeightDataLoss    float64 `toml:"weight_data_loss"`
	WeightDataStorage float64 `toml:"weight_data_storage"`
	WeightRefCount    float64 `toml:"weight_ref_count"`

	// SearchBudgetRatio bounds the search at SearchBudgetRatio * |E0|
	// mutations, counted on the step log that every clone of the initial
	// graph shares (see relgraph.Graph.StepCount). spec.md §4.4 fixes this at 2/3 and
	// states implementations must not remove the bound; this field lets
	// a host tune it without changing that guarantee's existence.
	SearchBudgetRatio float64 `toml:"search_budget_ratio"`

	// PreviewRowLimit is the default row count sampled per root
	// collection in preview mode (§4.8 Phase 1, ORDER BY RAND() LIMIT n).
	PreviewRowLimit int `toml:"preview_row_limit"`
}

// DefaultConfig mirrors internal/cost's chosen weights: spec.md §4.6's
// formula text (loss=1, storage=10, refs=7), not the looser prose
// naming that precedes it -- see internal/cost's package doc.
func DefaultConfig() *Config {
	return &Config{
		WeightDataLoss:    1,
		WeightDataStorage: 10,
		WeightRefCount:    7,
		SearchBudgetRatio: 2.0 / 3.0,
		PreviewRowLimit:   100,
	}
}

// Load reads a TOML config file, falling back to DefaultConfig for any
// field left unset (zero-valued) in the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the host, not derived from request input
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("engineconfig: reading %s: %w", path, err)
	}

	var onDisk Config
	if _, err := toml.Decode(string(data), &onDisk); err != nil {
		return nil, fmt.Errorf("engineconfig: parsing %s: %w", path, err)
	}

	if onDisk.WeightDataLoss != 0 {
		cfg.WeightDataLoss = onDisk.WeightDataLoss
	}
	if onDisk.WeightDataStorage != 0 {
		cfg.WeightDataStorage = onDisk.WeightDataStorage
	}
	if onDisk.WeightRefCount != 0 {
		cfg.WeightRefCount = onDisk.WeightRefCount
	}
	if onDisk.SearchBudgetRatio != 0 {
		cfg.SearchBudgetRatio = onDisk.SearchBudgetRatio
	}
	if onDisk.PreviewRowLimit != 0 {
		cfg.PreviewRowLimit = onDisk.PreviewRowLimit
	}

	return cfg, nil
}

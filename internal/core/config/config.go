// Package config provides configuration management for Doppel commands.
package config

import (
	"fmt"

	"github.com/doppelgang/doppel/pkg/equiv"
)

// Selection base names accepted in configuration.
const (
	SelectionDeclared = "declared"
	SelectionRuntime  = "runtime"
)

// Matching mode names accepted in configuration.
const (
	MatchingStrict     = "strict"
	MatchingBestEffort = "best-effort"
)

// Cycle policy names accepted in configuration.
const (
	CyclesFail   = "fail"
	CyclesIgnore = "ignore"
)

// Config holds everything a Doppel command needs: where snapshots live and
// how the comparison engine is assembled.
type Config struct {
	StoreURL string
	Engine   EngineConfig
}

// EngineConfig mirrors the comparison plan's knobs in flat, serializable
// form. Plan turns it into an executable equiv.Plan.
type EngineConfig struct {
	Selection string
	Matching  string
	Recursive bool
	Cycles    string
	MaxDepth  int
	Include   []string
	Exclude   []string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		StoreURL: "sqlite://doppel.db",
		Engine: EngineConfig{
			Selection: SelectionDeclared,
			Matching:  MatchingStrict,
			Recursive: true,
			Cycles:    CyclesFail,
			MaxDepth:  32,
		},
	}
}

// Plan assembles the comparison plan this configuration describes.
// Unknown enum values fail here; malformed include and exclude patterns
// fail inside Build with the offending pattern named.
func (c *Config) Plan() (*equiv.Plan, error) {
	cfg := equiv.Default()

	switch c.Engine.Selection {
	case SelectionDeclared:
		// Default's base already selects declared fields.
	case SelectionRuntime:
		cfg.IncludingAllRuntimeFields()
	default:
		return nil, fmt.Errorf("unknown selection %q (expected declared or runtime)", c.Engine.Selection)
	}

	switch c.Engine.Matching {
	case MatchingStrict:
		cfg.MatchingStrictly()
	case MatchingBestEffort:
		cfg.MatchingBestEffort()
	default:
		return nil, fmt.Errorf("unknown matching %q (expected strict or best-effort)", c.Engine.Matching)
	}

	if c.Engine.Recursive {
		cfg.Recursive()
	} else {
		cfg.NonRecursive()
	}

	switch c.Engine.Cycles {
	case CyclesFail:
		cfg.FailingOnCycles()
	case CyclesIgnore:
		cfg.IgnoringCycles()
	default:
		return nil, fmt.Errorf("unknown cycles policy %q (expected fail or ignore)", c.Engine.Cycles)
	}

	cfg.MaxDepth(c.Engine.MaxDepth)

	for _, pattern := range c.Engine.Include {
		cfg.Including(pattern)
	}
	for _, pattern := range c.Engine.Exclude {
		cfg.Excluding(pattern)
	}

	return cfg.Build()
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
)

// CurrentConfigVersion is written to new config files and compared against
// meta.version on load.
const CurrentConfigVersion = "v1.0.0"

// SmartConfig is the on-disk configuration at ~/.smart/smart.yaml.
type SmartConfig struct {
	Meta MetaConfig `yaml:"meta"`

	// ConfigDir holds the .algos named lists.
	ConfigDir string `yaml:"config_dir" validate:"required"`

	// AlgoSearchPaths are probed in order for <name>.so plugins; first hit wins.
	AlgoSearchPaths []string `yaml:"algo_search_paths" validate:"required,min=1,dive,required"`

	// DataDirs are probed for corpus files given by relative path.
	DataDirs []string `yaml:"data_dirs" validate:"dive,required"`

	Logging LoggingConfig `yaml:"logging"`

	Defaults RunDefaults `yaml:"defaults"`
}

type MetaConfig struct {
	Version string `yaml:"version" validate:"required"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

// RunDefaults seeds the run and test flags.
type RunDefaults struct {
	TextSize    int     `yaml:"text_size" validate:"gt=0"`
	NumRuns     int     `yaml:"num_runs" validate:"gt=0"`
	TimeLimitMs float64 `yaml:"time_limit_ms" validate:"gt=0"`
	MinLen      int     `yaml:"min_len" validate:"gte=1"`
	MaxLen      int     `yaml:"max_len" validate:"gtefield=MinLen"`
	IncrementOp string  `yaml:"increment_op" validate:"oneof=+ *"`
	Increment   int     `yaml:"increment" validate:"gt=0"`
	Pin         string  `yaml:"pin" validate:"required"`
	Watchdog    float64 `yaml:"watchdog" validate:"gte=0"`
}

// DefaultConfig returns the configuration written on first use.
func DefaultConfig() SmartConfig {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".smart")
	return SmartConfig{
		Meta:      MetaConfig{Version: CurrentConfigVersion},
		ConfigDir: base,
		AlgoSearchPaths: []string{
			filepath.Join(base, "algos"),
			filepath.Join("bin", "algos"),
		},
		DataDirs: []string{
			filepath.Join(base, "data"),
			"data",
		},
		Logging: LoggingConfig{Level: "warn"},
		Defaults: RunDefaults{
			TextSize:    1048576,
			NumRuns:     500,
			TimeLimitMs: 300,
			MinLen:      2,
			MaxLen:      4096,
			IncrementOp: "*",
			Increment:   2,
			Pin:         "last",
		},
	}
}

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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig    = "SMART_CONFIG"
	EnvConfigDir = "SMART_CONFIG_DIR"
	EnvDataDir   = "SMART_DATA_DIR"
)

var (
	// Global is a singleton instance
	Global SmartConfig
	once   sync.Once

	validate = validator.New()
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIncompatibleVersion is returned when meta.version has a newer
	// major version than this binary understands.
	ErrIncompatibleVersion = errors.New("incompatible config version")
)

// Load ensures the config is loaded into the Global variable. The path
// comes from $SMART_CONFIG or defaults to ~/.smart/smart.yaml.
func Load() error {
	var err error
	once.Do(func() {
		var path string
		path, err = DefaultPath()
		if err != nil {
			return
		}
		Global, err = LoadFrom(path)
	})
	return err
}

// DefaultPath resolves the config file location.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".smart", "smart.yaml"), nil
}

// LoadFrom reads, creating on first use, and validates the config at path.
// Environment overrides are applied before validation.
func LoadFrom(path string) (SmartConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return SmartConfig{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SmartConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SmartConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return SmartConfig{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *SmartConfig) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		cfg.ConfigDir = dir
	}
	if dirs := os.Getenv(EnvDataDir); dirs != "" {
		cfg.DataDirs = filepath.SplitList(dirs)
	}
	cfg.ConfigDir = expandHome(cfg.ConfigDir)
	for i, p := range cfg.AlgoSearchPaths {
		cfg.AlgoSearchPaths[i] = expandHome(p)
	}
	for i, p := range cfg.DataDirs {
		cfg.DataDirs[i] = expandHome(p)
	}
}

// Validate checks struct tags and the config version.
func Validate(cfg SmartConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	v := cfg.Meta.Version
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: meta.version %q is not a semantic version", ErrInvalidConfig, v)
	}
	if semver.Compare(semver.Major(v), semver.Major(CurrentConfigVersion)) > 0 {
		return fmt.Errorf("%w: %s (supported %s)", ErrIncompatibleVersion, v, semver.Major(CurrentConfigVersion))
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML for `smart config`.
func Marshal(cfg SmartConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

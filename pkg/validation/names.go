// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides validators for user-provided identifiers
// that end up in file paths.
//
// Algorithm names become plugin file names (`<name>.so`) and list names
// become `<config>/<name>.algos`, so both are restricted to a safe
// character set that cannot escape the configured directories.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLen is the longest accepted algorithm or list name, in bytes.
const MaxNameLen = 64

// namePattern matches algorithm names such as "hor", "bsdm4", "ssecp",
// "kmp-2" or "ebom.v2". No path separators, no leading dot.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+\-]*$`)

// ValidateAlgorithmName checks that name can be used as a plugin base name.
//
// Valid names:
//   - 1-64 bytes
//   - letters, digits, '_', '-', '.', '+'
//   - do not start with '.', '-' or '+'
//
// Example:
//
//	if err := validation.ValidateAlgorithmName(arg); err != nil {
//	    return fmt.Errorf("select: %w", err)
//	}
func ValidateAlgorithmName(name string) error {
	if name == "" {
		return fmt.Errorf("algorithm name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("algorithm name %q is longer than %d bytes", name, MaxNameLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid algorithm name %q (letters, digits, '_', '-', '.', '+' only)", name)
	}
	return nil
}

// ValidateListName checks a named-list identifier. It follows the algorithm
// name rules and additionally rejects the ".algos" suffix, which callers
// add themselves.
func ValidateListName(name string) error {
	if name == "" {
		return fmt.Errorf("list name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("list name %q is longer than %d bytes", name, MaxNameLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid list name %q (letters, digits, '_', '-', '.', '+' only)", name)
	}
	if strings.HasSuffix(strings.ToLower(name), ".algos") {
		return fmt.Errorf("list name %q must not include the .algos suffix", name)
	}
	return nil
}

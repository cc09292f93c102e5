// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry holds the algorithm name registry: case-insensitive
// names, ordered capped sets with filter and merge, the on-disk named lists
// and discovery of plugins on the search paths.
package registry

import (
	"strings"

	"github.com/AleutianAI/smart/pkg/validation"
)

// MaxSelectAlgos caps the size of any Set.
const MaxSelectAlgos = 500

// Name is an algorithm identifier. Comparison is case-insensitive.
type Name string

// ParseName validates s and returns it as a Name.
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if err := validation.ValidateAlgorithmName(s); err != nil {
		return "", err
	}
	return Name(s), nil
}

// Canonical is the lower-case form used in files and plugin paths.
func (n Name) Canonical() string { return strings.ToLower(string(n)) }

// Display is the upper-case form used on screen.
func (n Name) Display() string { return strings.ToUpper(string(n)) }

// Equal reports whether the names match ignoring case.
func (n Name) Equal(o Name) bool { return strings.EqualFold(string(n), string(o)) }

func (n Name) String() string { return string(n) }

// Strings converts names to their canonical forms.
func Strings(names []Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Canonical()
	}
	return out
}

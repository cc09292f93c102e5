// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"fmt"
	"slices"
	"strings"
)

// Set is an ordered collection of unique names, capped at MaxSelectAlgos.
// The zero value is an empty set ready to use. Not safe for concurrent use.
type Set struct {
	names []Name
}

// NewSet builds a set from names, dropping case-insensitive duplicates.
func NewSet(names ...Name) (*Set, error) {
	s := &Set{}
	if _, err := s.Merge(names); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of names.
func (s *Set) Len() int { return len(s.names) }

// Names returns a copy of the names in order.
func (s *Set) Names() []Name { return slices.Clone(s.names) }

// Contains reports whether n is present, ignoring case.
func (s *Set) Contains(n Name) bool {
	return s.index(n) >= 0
}

func (s *Set) index(n Name) int {
	return slices.IndexFunc(s.names, n.Equal)
}

// Add appends n unless it is already present. It reports whether n was added.
func (s *Set) Add(n Name) (bool, error) {
	if s.Contains(n) {
		return false, nil
	}
	if len(s.names) >= MaxSelectAlgos {
		return false, fmt.Errorf("%w: adding %s would exceed %d", ErrCapacity, n.Display(), MaxSelectAlgos)
	}
	s.names = append(s.names, n)
	return true, nil
}

// Merge appends every name of other not already present and returns those
// merged in. If the result would exceed MaxSelectAlgos the set is left
// unchanged and ErrCapacity is returned.
func (s *Set) Merge(other []Name) ([]Name, error) {
	var merged []Name
	for _, n := range other {
		if s.Contains(n) || slices.ContainsFunc(merged, n.Equal) {
			continue
		}
		merged = append(merged, n)
	}
	if len(s.names)+len(merged) > MaxSelectAlgos {
		return nil, fmt.Errorf("%w: merging %d names into %d exceeds %d",
			ErrCapacity, len(merged), len(s.names), MaxSelectAlgos)
	}
	s.names = append(s.names, merged...)
	return merged, nil
}

// Filter compacts the set in place. With keepMatching it keeps names that
// match m and drops the rest, otherwise it drops the matching ones. The
// removed names are returned in their original order.
func (s *Set) Filter(m *Matcher, keepMatching bool) []Name {
	var removed []Name
	kept := s.names[:0]
	for _, n := range s.names {
		if m.Match(n) == keepMatching {
			kept = append(kept, n)
		} else {
			removed = append(removed, n)
		}
	}
	clear(s.names[len(kept):])
	s.names = kept
	return removed
}

// Sort orders names byte-wise by canonical form.
func (s *Set) Sort() {
	slices.SortStableFunc(s.names, func(a, b Name) int {
		return strings.Compare(a.Canonical(), b.Canonical())
	})
}

// Clear empties the set.
func (s *Set) Clear() {
	s.names = nil
}

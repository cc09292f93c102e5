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
	"regexp"
	"strings"
)

// Matcher holds compiled POSIX extended regexes matched against lower-case
// names. A name matches when any regex matches the whole name.
type Matcher struct {
	patterns []string
	res      []*regexp.Regexp
}

// CompileMatcher compiles each pattern once. Patterns are lower-cased and
// anchored, so "hor" matches only HOR while "bsdm.*" matches the family.
func CompileMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: patterns}
	for _, p := range patterns {
		re, err := regexp.CompilePOSIX("^(" + strings.ToLower(p) + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		m.res = append(m.res, re)
	}
	return m, nil
}

// Match reports whether n matches any pattern. A nil or empty matcher
// matches nothing.
func (m *Matcher) Match(n Name) bool {
	if m == nil {
		return false
	}
	c := n.Canonical()
	for _, re := range m.res {
		if re.MatchString(c) {
			return true
		}
	}
	return false
}

// Unmatched returns the patterns that match none of names.
func (m *Matcher) Unmatched(names []Name) []string {
	var out []string
	for i, re := range m.res {
		hit := false
		for _, n := range names {
			if re.MatchString(n.Canonical()) {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, m.patterns[i])
		}
	}
	return out
}

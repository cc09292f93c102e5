// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import (
	"context"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
)

// Source says where the algorithms of a run or test come from. The sources
// are combined; an entirely empty Source means the selected list.
type Source struct {
	// Patterns are regexes matched against every discovered algorithm.
	Patterns []string

	// All uses every discovered algorithm.
	All bool

	// Selected adds the selected list.
	Selected bool

	// Named adds a saved list.
	Named string
}

// IsZero reports whether no source was given.
func (s Source) IsZero() bool {
	return len(s.Patterns) == 0 && !s.All && !s.Selected && s.Named == ""
}

// Resolve builds the set of algorithms to load for src, in the order:
// named list, selected list, discovered algorithms.
func (m *Manager) Resolve(ctx context.Context, src Source) (*registry.Set, error) {
	if src.IsZero() {
		src.Selected = true
	}
	set := &registry.Set{}

	if src.Named != "" {
		named, err := m.Store.Read(src.Named)
		if err != nil {
			return nil, err
		}
		if _, err := set.Merge(named.Names()); err != nil {
			return nil, err
		}
	}
	if src.Selected {
		selected, err := m.Store.Read(registry.SelectedList)
		if err != nil {
			return nil, err
		}
		if _, err := set.Merge(selected.Names()); err != nil {
			return nil, err
		}
	}
	if src.All || len(src.Patterns) > 0 {
		all, err := m.Discover(ctx)
		if err != nil {
			return nil, err
		}
		if !src.All {
			matcher, err := registry.CompileMatcher(src.Patterns)
			if err != nil {
				return nil, err
			}
			kept := all[:0:0]
			for _, n := range all {
				if matcher.Match(n) {
					kept = append(kept, n)
				}
			}
			all = kept
		}
		if _, err := set.Merge(all); err != nil {
			return nil, err
		}
	}
	return set, nil
}

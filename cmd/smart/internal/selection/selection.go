// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selection manages the selected algorithm list and the saved named
// lists, and resolves which algorithms a run or test should load.
package selection

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
)

// DiscoverFunc lists every algorithm on the search paths.
type DiscoverFunc func(ctx context.Context) ([]registry.Name, error)

// Manager applies select operations through a registry Store.
type Manager struct {
	Store    *registry.Store
	Discover DiscoverFunc
}

// New returns a manager over store that discovers with discover.
func New(store *registry.Store, discover DiscoverFunc) *Manager {
	return &Manager{Store: store, Discover: discover}
}

// AddResult reports what an Add changed.
type AddResult struct {
	Added     []registry.Name
	Unmatched []string
}

// Add merges every discovered algorithm matching any pattern into the
// selected list. Patterns that match nothing are reported, not failed.
func (m *Manager) Add(ctx context.Context, patterns []string) (*AddResult, error) {
	matcher, err := registry.CompileMatcher(patterns)
	if err != nil {
		return nil, err
	}
	all, err := m.Discover(ctx)
	if err != nil {
		return nil, err
	}
	found, err := registry.NewSet(all...)
	if err != nil {
		return nil, err
	}
	found.Filter(matcher, true)

	selected, err := m.Store.Read(registry.SelectedList)
	if err != nil {
		return nil, err
	}
	added, err := selected.Merge(found.Names())
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		if err := m.Store.Write(registry.SelectedList, selected); err != nil {
			return nil, err
		}
	}
	return &AddResult{Added: added, Unmatched: matcher.Unmatched(all)}, nil
}

// Remove drops every selected algorithm matching any pattern.
func (m *Manager) Remove(patterns []string) ([]registry.Name, error) {
	matcher, err := registry.CompileMatcher(patterns)
	if err != nil {
		return nil, err
	}
	selected, err := m.Store.Read(registry.SelectedList)
	if err != nil {
		return nil, err
	}
	removed := selected.Filter(matcher, false)
	if len(removed) > 0 {
		if err := m.Store.Write(registry.SelectedList, selected); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

// Clear empties the selected list.
func (m *Manager) Clear() error {
	return m.Store.Write(registry.SelectedList, &registry.Set{})
}

// SaveAs copies the selected list into the named list.
func (m *Manager) SaveAs(name string) error {
	if name == registry.SelectedList {
		return fmt.Errorf("cannot save the selection over itself")
	}
	selected, err := m.Store.Read(registry.SelectedList)
	if err != nil {
		return err
	}
	return m.Store.Write(name, selected)
}

// SetDefault replaces the selected list with the named list.
func (m *Manager) SetDefault(name string) (*registry.Set, error) {
	named, err := m.Store.Read(name)
	if err != nil {
		return nil, err
	}
	if err := m.Store.Write(registry.SelectedList, named); err != nil {
		return nil, err
	}
	return named, nil
}

// ListNamed returns the saved lists, excluding the selection itself.
func (m *Manager) ListNamed() ([]string, error) {
	lists, err := m.Store.ListNamed()
	if err != nil {
		return nil, err
	}
	out := lists[:0]
	for _, l := range lists {
		if l != registry.SelectedList {
			out = append(out, l)
		}
	}
	return out, nil
}

// ShowAll lists every discovered algorithm, sorted.
func (m *Manager) ShowAll(ctx context.Context) ([]registry.Name, error) {
	all, err := m.Discover(ctx)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(all)
	slices.SortFunc(sorted, func(a, b registry.Name) int {
		return strings.Compare(a.Canonical(), b.Canonical())
	})
	return sorted, nil
}

// Show returns the names in list, sorted.
func (m *Manager) Show(list string) ([]registry.Name, error) {
	set, err := m.Store.Read(list)
	if err != nil {
		return nil, err
	}
	set.Sort()
	return set.Names(), nil
}

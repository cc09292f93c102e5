// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader resolves algorithm names to shared-object plugins on the
// search paths, opens them and extracts their search entry point.
//
// Every plugin exports one C function:
//
//	int internal_search(unsigned char *pattern, int m,
//	                    unsigned char *text, int n,
//	                    double *search_ms, double *preprocess_ms);
//
// The return value is the occurrence count, or negative when the algorithm
// declines the input. Both timings are reported in milliseconds.
//
// # Ownership
//
// A Table owns every opened library. Close it when the run ends:
//
//	table, err := loader.New(paths, logger).Load(names)
//	if err != nil {
//	    return err
//	}
//	defer table.Close()
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/logging"
)

// SearchSymbol is the entry point every plugin must export.
const SearchSymbol = "internal_search"

// Timing receives the per-call timings reported by a search function.
type Timing struct {
	SearchMs     float64
	PreprocessMs float64
}

// Reset zeroes both timings.
func (t *Timing) Reset() { *t = Timing{} }

// SearchFunc counts the occurrences of pattern in text. The backing arrays
// of both slices may extend past their length; plugins may use that
// headroom as scratch space for sentinels.
type SearchFunc func(pattern, text []byte, t *Timing) int

// Library is an opened plugin.
type Library interface {
	Lookup(symbol string) (SearchFunc, error)
	Close() error
}

// Opener opens plugin files. The default implementation uses dlopen.
type Opener interface {
	Open(path string) (Library, error)
}

// Algorithm is one slot of a Table. A slot whose plugin was not found has a
// nil Search and is skipped by the benchmark driver.
type Algorithm struct {
	Name   registry.Name
	Path   string
	Search SearchFunc

	lib Library
}

// Usable reports whether the slot can be invoked.
func (a *Algorithm) Usable() bool {
	return a != nil && a.Search != nil
}

// Static builds an in-process slot that needs no plugin file.
func Static(name registry.Name, fn SearchFunc) Algorithm {
	return Algorithm{Name: name, Path: "<static>", Search: fn}
}

// Table holds the loaded algorithms in registry order.
type Table struct {
	algos  []Algorithm
	closed bool
}

// NewTable wraps already-built slots, such as those from Static.
func NewTable(algos ...Algorithm) *Table {
	return &Table{algos: slices.Clone(algos)}
}

// Len returns the number of slots, usable or not.
func (t *Table) Len() int { return len(t.algos) }

// Algorithms returns pointers to every slot in order.
func (t *Table) Algorithms() []*Algorithm {
	out := make([]*Algorithm, len(t.algos))
	for i := range t.algos {
		out[i] = &t.algos[i]
	}
	return out
}

// Usable returns the slots whose plugin was loaded.
func (t *Table) Usable() []*Algorithm {
	var out []*Algorithm
	for i := range t.algos {
		if t.algos[i].Usable() {
			out = append(out, &t.algos[i])
		}
	}
	return out
}

// Close releases every library and clears every slot. Calling it again is
// a no-op.
func (t *Table) Close() error {
	if t == nil || t.closed {
		return nil
	}
	t.closed = true
	var errs []error
	for i := range t.algos {
		a := &t.algos[i]
		if a.lib != nil {
			if err := a.lib.Close(); err != nil {
				errs = append(errs, &PluginError{Name: a.Name, Path: a.Path, Err: err})
			}
		}
		a.lib = nil
		a.Search = nil
	}
	return errors.Join(errs...)
}

// Loader resolves and opens plugins.
type Loader struct {
	SearchPaths []string
	Opener      Opener
	Suffix      string
	Logger      *logging.Logger
}

// New returns a Loader using the platform dlopen and shared-object suffix.
func New(searchPaths []string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{
		SearchPaths: searchPaths,
		Opener:      defaultOpener(),
		Suffix:      registry.PluginSuffix(),
		Logger:      logger,
	}
}

// Locate returns the first <lower(name)><suffix> on the search paths.
func (l *Loader) Locate(name registry.Name) (string, bool) {
	file := name.Canonical() + l.Suffix
	for _, dir := range l.SearchPaths {
		path := filepath.Join(dir, file)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.Logger.Debug("cannot stat plugin candidate", "path", path, "error", err)
		}
	}
	return "", false
}

// Load opens every named plugin. The names are copied so later changes to
// the caller's slice cannot desynchronise names and handles.
//
// A plugin that is not found is logged and left unusable. A plugin that is
// found but cannot be opened, or lacks SearchSymbol, aborts the load: all
// libraries opened so far are closed and the error is returned.
func (l *Loader) Load(names []registry.Name) (*Table, error) {
	table := &Table{algos: make([]Algorithm, len(names))}
	for i, n := range slices.Clone(names) {
		slot := &table.algos[i]
		slot.Name = n

		path, ok := l.Locate(n)
		if !ok {
			l.Logger.Warn("could not locate algorithm in the search paths",
				"algorithm", n.Display(), "paths", l.SearchPaths)
			continue
		}
		slot.Path = path

		lib, err := l.Opener.Open(path)
		if err != nil {
			table.Close()
			return nil, &PluginError{Name: n, Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedPlugin, err)}
		}
		search, err := lib.Lookup(SearchSymbol)
		if err != nil {
			lib.Close()
			table.Close()
			return nil, &PluginError{Name: n, Path: path,
				Err: fmt.Errorf("%w: does not export %s: %v", ErrMalformedPlugin, SearchSymbol, err)}
		}
		slot.lib = lib
		slot.Search = search
		l.Logger.Debug("loaded algorithm", "algorithm", n.Display(), "path", path)
	}
	return table, nil
}

// bufPtr returns a pointer to the first byte of b's backing array, which
// stays valid for empty slices that carry a sentinel.
func bufPtr(b []byte) *byte {
	if cap(b) == 0 {
		return nil
	}
	return &b[:cap(b)][0]
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/logging"
)

// =============================================================================
// Test doubles
// =============================================================================

type fakeLibrary struct {
	path    string
	symbols map[string]SearchFunc
	closed  int
}

func (f *fakeLibrary) Lookup(symbol string) (SearchFunc, error) {
	fn, ok := f.symbols[symbol]
	if !ok {
		return nil, errors.New("undefined symbol")
	}
	return fn, nil
}

func (f *fakeLibrary) Close() error {
	f.closed++
	return nil
}

type fakeOpener struct {
	libs    map[string]*fakeLibrary // by base name
	openErr map[string]error
	opened  []*fakeLibrary
}

func (o *fakeOpener) Open(path string) (Library, error) {
	base := filepath.Base(path)
	if err := o.openErr[base]; err != nil {
		return nil, err
	}
	lib, ok := o.libs[base]
	if !ok {
		lib = &fakeLibrary{path: path, symbols: map[string]SearchFunc{SearchSymbol: countBytes}}
	}
	o.opened = append(o.opened, lib)
	return lib, nil
}

func countBytes(p, t []byte, _ *Timing) int { return bytes.Count(t, p) }

func setup(t *testing.T, files ...string) (*Loader, *fakeOpener, string) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
	}
	op := &fakeOpener{libs: map[string]*fakeLibrary{}, openErr: map[string]error{}}
	l := &Loader{SearchPaths: []string{dir}, Opener: op, Suffix: ".so", Logger: logging.Nop()}
	return l, op, dir
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_UsableAndMissing(t *testing.T) {
	l, op, dir := setup(t, "hor.so", "kmp.so")

	table, err := l.Load([]registry.Name{"HOR", "ghost", "kmp"})
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	algos := table.Algorithms()
	assert.True(t, algos[0].Usable())
	assert.Equal(t, filepath.Join(dir, "hor.so"), algos[0].Path)
	assert.False(t, algos[1].Usable())
	assert.True(t, algos[2].Usable())
	assert.Len(t, table.Usable(), 2)

	require.NoError(t, table.Close())
	for _, a := range table.Algorithms() {
		assert.Nil(t, a.Search)
		assert.Nil(t, a.lib)
	}
	for _, lib := range op.opened {
		assert.Equal(t, 1, lib.closed)
	}

	// idempotent
	require.NoError(t, table.Close())
	for _, lib := range op.opened {
		assert.Equal(t, 1, lib.closed)
	}
}

func TestLoad_FirstSearchPathWins(t *testing.T) {
	l, _, first := setup(t, "bf.so")
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "bf.so"), nil, 0644))
	l.SearchPaths = []string{second, first}

	path, ok := l.Locate("BF")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(second, "bf.so"), path)
}

func TestLoad_MissingSymbolReleasesEverything(t *testing.T) {
	l, op, _ := setup(t, "bf.so", "bad.so", "kmp.so")
	op.libs["bad.so"] = &fakeLibrary{symbols: map[string]SearchFunc{}}

	table, err := l.Load([]registry.Name{"bf", "bad", "kmp"})
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrMalformedPlugin)

	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, registry.Name("bad"), pe.Name)

	require.Len(t, op.opened, 2)
	for _, lib := range op.opened {
		assert.Equal(t, 1, lib.closed, "library %s should be closed", lib.path)
	}
}

func TestLoad_OpenFailureIsFatal(t *testing.T) {
	l, op, _ := setup(t, "bf.so")
	op.openErr["bf.so"] = errors.New("wrong ELF class")

	_, err := l.Load([]registry.Name{"bf"})
	assert.ErrorIs(t, err, ErrMalformedPlugin)
	assert.Contains(t, err.Error(), "wrong ELF class")
}

func TestLoad_SnapshotsNames(t *testing.T) {
	l, _, _ := setup(t, "a.so", "b.so")
	names := []registry.Name{"b", "a"}
	table, err := l.Load(names)
	require.NoError(t, err)
	defer table.Close()

	names[0], names[1] = names[1], names[0]
	assert.Equal(t, registry.Name("b"), table.Algorithms()[0].Name)
}

// =============================================================================
// Static / Table Tests
// =============================================================================

func TestStatic(t *testing.T) {
	table := NewTable(Static("bf", countBytes))
	defer table.Close()

	a := table.Usable()[0]
	var timing Timing
	assert.Equal(t, 3, a.Search([]byte("ab"), []byte("ababab"), &timing))
}

func TestTiming_Reset(t *testing.T) {
	tm := Timing{SearchMs: 1, PreprocessMs: 2}
	tm.Reset()
	assert.Zero(t, tm)
}

func TestBufPtr(t *testing.T) {
	assert.Nil(t, bufPtr(nil))
	b := make([]byte, 0, 1)
	assert.NotNil(t, bufPtr(b))
}

func TestTable_NilClose(t *testing.T) {
	var table *Table
	assert.NoError(t, table.Close())
}

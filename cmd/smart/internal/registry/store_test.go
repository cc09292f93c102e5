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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Store Tests
// =============================================================================

func TestStore_RoundTripLowercases(t *testing.T) {
	store := NewStore(t.TempDir())
	s, _ := NewSet(names("HOR", "Kmp", "bf")...)
	require.NoError(t, store.Write("mine", s))

	got, err := store.Read("mine")
	require.NoError(t, err)
	assert.Equal(t, names("hor", "kmp", "bf"), got.Names())

	data, err := os.ReadFile(store.Path("mine"))
	require.NoError(t, err)
	assert.Equal(t, "hor\nkmp\nbf\n", string(data))

	_, err = os.Stat(store.Path("mine") + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_ReadSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.algos"), []byte("  hor \n\n\tkmp\nHOR\n"), 0644))
	got, err := NewStore(dir).Read("x")
	require.NoError(t, err)
	assert.Equal(t, names("hor", "kmp"), got.Names())
}

func TestStore_ReadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	sel, err := store.Read(SelectedList)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Len())

	_, err = store.Read("other")
	assert.ErrorIs(t, err, ErrListNotFound)
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Op)
}

func TestStore_ReadRejectsInvalidListName(t *testing.T) {
	_, err := NewStore(t.TempDir()).Read("../etc/passwd")
	assert.Error(t, err)
}

func TestStore_WriteFailureBeforeRenameKeepsOriginal(t *testing.T) {
	store := NewStore(t.TempDir())
	orig, _ := NewSet(names("bf")...)
	require.NoError(t, store.Write(SelectedList, orig))

	renameFile = func(string, string) error { return errors.New("simulated crash") }
	defer func() { renameFile = os.Rename }()

	next, _ := NewSet(names("hor", "kmp")...)
	err := store.Write(SelectedList, next)
	require.Error(t, err)

	got, err := store.Read(SelectedList)
	require.NoError(t, err)
	assert.Equal(t, names("bf"), got.Names())

	_, err = os.Stat(store.Path(SelectedList) + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file should be removed")
}

func TestStore_ListNamed(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	empty := &Set{}
	require.NoError(t, store.Write("zeta", empty))
	require.NoError(t, store.Write("alpha", empty))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	lists, err := store.ListNamed()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, lists)
}

func TestStore_ListNamedMissingDir(t *testing.T) {
	lists, err := NewStore(filepath.Join(t.TempDir(), "nope")).ListNamed()
	require.NoError(t, err)
	assert.Empty(t, lists)
}

// =============================================================================
// Discover Tests
// =============================================================================

func touch(t *testing.T, dir string, files ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
	}
}

func TestDiscover_OrderAndDedup(t *testing.T) {
	root := t.TempDir()
	sfx := PluginSuffix()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	touch(t, first, "kmp"+sfx, "bf"+sfx, "readme.txt")
	touch(t, second, "BF"+sfx, "hor"+sfx)
	require.NoError(t, os.Mkdir(filepath.Join(first, "sub"+sfx), 0755))

	got, err := Discover(context.Background(), []string{first, filepath.Join(root, "missing"), second}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bf", "kmp", "hor"}, Strings(got))
}

func TestSuffixFor(t *testing.T) {
	assert.Equal(t, ".so", suffixFor("linux"))
	assert.Equal(t, ".so", suffixFor("freebsd"))
	assert.Equal(t, ".dylib", suffixFor("darwin"))
	assert.Equal(t, ".dll", suffixFor("windows"))
}

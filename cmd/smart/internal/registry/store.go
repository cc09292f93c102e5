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
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/smart/pkg/validation"
)

const (
	// SelectedList is the named list used when no other is given.
	SelectedList = "selected"

	listSuffix = ".algos"
)

// renameFile is swapped by tests to simulate a crash before the rename.
var renameFile = os.Rename

// Store persists named lists as <Dir>/<list>.algos, one lower-case name
// per line.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the file backing list.
func (s *Store) Path(list string) string {
	return filepath.Join(s.Dir, list+listSuffix)
}

// Read loads a named list. Blank lines are skipped and whitespace trimmed.
// A missing "selected" list reads as empty.
func (s *Store) Read(list string) (*Set, error) {
	if err := validation.ValidateListName(list); err != nil {
		return nil, err
	}
	path := s.Path(list)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if list == SelectedList {
				return &Set{}, nil
			}
			return nil, &StoreError{Op: "read", Path: path, Err: fmt.Errorf("%w: %s", ErrListNotFound, list)}
		}
		return nil, &StoreError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	set := &Set{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, err := ParseName(line)
		if err != nil {
			return nil, &StoreError{Op: "read", Path: path, Err: fmt.Errorf("line %d: %w", lineNo, err)}
		}
		if _, err := set.Add(name); err != nil {
			return nil, &StoreError{Op: "read", Path: path, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &StoreError{Op: "read", Path: path, Err: err}
	}
	return set, nil
}

// Write replaces a named list atomically: the names go to <list>.algos.tmp
// which is then renamed over the target. On failure the temp file is
// removed and the previous list is left untouched.
func (s *Store) Write(list string, set *Set) (err error) {
	if err := validation.ValidateListName(list); err != nil {
		return err
	}
	path := s.Path(list)
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return &StoreError{Op: "write", Path: path, Err: err}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &StoreError{Op: "write", Path: tmp, Err: err}
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	for _, n := range set.Names() {
		fmt.Fprintln(w, n.Canonical())
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return &StoreError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &StoreError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StoreError{Op: "write", Path: tmp, Err: err}
	}
	if err := renameFile(tmp, path); err != nil {
		return &StoreError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ListNamed returns the names of every stored list, sorted.
func (s *Store) ListNamed() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StoreError{Op: "list", Path: s.Dir, Err: err}
	}
	var lists []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), listSuffix) {
			continue
		}
		lists = append(lists, strings.TrimSuffix(e.Name(), listSuffix))
	}
	sort.Strings(lists)
	return lists, nil
}

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
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/smart/pkg/logging"
)

// PluginSuffix is the shared-object suffix for the running platform.
func PluginSuffix() string {
	return suffixFor(runtime.GOOS)
}

func suffixFor(goos string) string {
	switch goos {
	case "darwin", "ios":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// Discover lists the plugins found on the search paths. Paths are scanned
// concurrently; results are merged in path order, each path's names sorted,
// duplicates dropped after their first appearance. Missing paths are logged
// and skipped.
func Discover(ctx context.Context, paths []string, logger *logging.Logger) ([]Name, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	suffix := PluginSuffix()
	perPath := make([][]Name, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			names, err := scanDir(dir, suffix)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					logger.Warn("algorithm search path does not exist", "path", dir)
					return nil
				}
				return &StoreError{Op: "discover", Path: dir, Err: err}
			}
			logger.Debug("scanned algorithm search path", "path", dir, "found", len(names))
			perPath[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Name
	seen := make(map[string]bool)
	for _, names := range perPath {
		for _, n := range names {
			if seen[n.Canonical()] {
				continue
			}
			seen[n.Canonical()] = true
			all = append(all, n)
		}
	}
	return all, nil
}

func scanDir(dir, suffix string) ([]Name, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []Name
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		base, ok := strings.CutSuffix(e.Name(), suffix)
		if !ok || base == "" {
			continue
		}
		n, err := ParseName(base)
		if err != nil {
			continue
		}
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].Canonical() < names[j].Canonical()
	})
	return names, nil
}

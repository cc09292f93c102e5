// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build darwin || linux || freebsd

package loader

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func defaultOpener() Opener { return dlOpener{} }

type dlOpener struct{}

func (dlOpener) Open(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	return &dlLibrary{handle: handle}, nil
}

type dlLibrary struct {
	handle uintptr
}

// nativeSearch mirrors the C signature of internal_search.
type nativeSearch func(pattern *byte, m int32, text *byte, n int32, searchMs, preprocessMs *float64) int32

func (l *dlLibrary) Lookup(symbol string) (SearchFunc, error) {
	sym, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return nil, err
	}
	if sym == 0 {
		return nil, fmt.Errorf("symbol %s resolved to nil", symbol)
	}
	var native nativeSearch
	purego.RegisterFunc(&native, sym)
	return func(pattern, text []byte, t *Timing) int {
		return int(native(bufPtr(pattern), int32(len(pattern)), bufPtr(text), int32(len(text)),
			&t.SearchMs, &t.PreprocessMs))
	}, nil
}

func (l *dlLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}

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
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned when a set would exceed MaxSelectAlgos.
	ErrCapacity = errors.New("too many algorithms")

	// ErrListNotFound is returned when a named list does not exist.
	ErrListNotFound = errors.New("named list not found")

	// ErrInvalidPattern wraps a regex that failed to compile.
	ErrInvalidPattern = errors.New("invalid algorithm pattern")
)

// StoreError describes a failed named-list operation.
type StoreError struct {
	Op   string // "read", "write", "list", "delete"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

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
	"errors"
	"fmt"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
)

var (
	// ErrMalformedPlugin is returned when a plugin file exists but cannot be
	// opened or does not export the search entry point.
	ErrMalformedPlugin = errors.New("malformed algorithm plugin")

	// ErrUnsupported is returned by the opener on platforms without dlopen.
	ErrUnsupported = errors.New("dynamic loading is not supported on this platform")
)

// PluginError ties a load failure to the algorithm and file involved.
type PluginError struct {
	Name registry.Name
	Path string
	Err  error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("algorithm %s (%s): %v", e.Name.Display(), e.Path, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

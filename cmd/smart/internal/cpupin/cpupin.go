// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cpupin pins the benchmarking thread to one CPU.
package cpupin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupported is returned on platforms without thread affinity.
	ErrUnsupported = errors.New("cpu pinning is not supported on this platform")

	// ErrCPUUnavailable is returned when the requested CPU is not in the
	// process affinity mask.
	ErrCPUUnavailable = errors.New("cpu not available")
)

// Kind selects the pinning strategy.
type Kind int

const (
	Off Kind = iota
	Last
	Specific
)

// Mode is a parsed -pin value.
type Mode struct {
	Kind Kind
	CPU  int
}

// Parse accepts "off", "last" or a CPU index.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return Mode{Kind: Last}, nil
	case "off", "none":
		return Mode{Kind: Off}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return Mode{}, fmt.Errorf("invalid cpu pin %q: want off, last or a cpu index", s)
	}
	return Mode{Kind: Specific, CPU: n}, nil
}

func (m Mode) String() string {
	switch m.Kind {
	case Off:
		return "off"
	case Last:
		return "last"
	default:
		return strconv.Itoa(m.CPU)
	}
}

// Pin locks the calling goroutine to its OS thread and restricts that
// thread to the CPU chosen by m. It returns the CPU used, or -1 for Off.
// Call it from the goroutine that will run the measurements.
func Pin(m Mode) (int, error) {
	if m.Kind == Off {
		return -1, nil
	}
	return pin(m)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build linux

package cpupin

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

func pin(m Mode) (int, error) {
	var avail unix.CPUSet
	if err := unix.SchedGetaffinity(0, &avail); err != nil {
		return -1, fmt.Errorf("read cpu affinity: %w", err)
	}

	cpu := m.CPU
	if m.Kind == Last {
		cpu = highest(&avail)
		if cpu < 0 {
			return -1, fmt.Errorf("%w: empty affinity mask", ErrCPUUnavailable)
		}
	} else if cpu >= maxCPUs(&avail) || !avail.IsSet(cpu) {
		return -1, fmt.Errorf("%w: cpu %d (%d available)", ErrCPUUnavailable, cpu, avail.Count())
	}

	runtime.LockOSThread()
	var one unix.CPUSet
	one.Set(cpu)
	if err := unix.SchedSetaffinity(0, &one); err != nil {
		runtime.UnlockOSThread()
		return -1, fmt.Errorf("set cpu affinity to %d: %w", cpu, err)
	}
	return cpu, nil
}

func maxCPUs(set *unix.CPUSet) int {
	return int(unsafe.Sizeof(*set)) * 8
}

func highest(set *unix.CPUSet) int {
	for cpu := maxCPUs(set) - 1; cpu >= 0; cpu-- {
		if set.IsSet(cpu) {
			return cpu
		}
	}
	return -1
}

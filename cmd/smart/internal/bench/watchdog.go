// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"time"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
)

// armWatchdog logs a warning if a search call is still running after
// factor x limit. The returned func disarms it. The timer callback only
// logs; the measurement is never touched.
func (d *Driver) armWatchdog(name registry.Name, m int, opts Options) func() {
	if opts.WatchdogFactor <= 0 {
		return func() {}
	}
	after := time.Duration(opts.WatchdogFactor * float64(opts.TimeLimit))
	timer := time.AfterFunc(after, func() {
		d.Logger.Warn("search call still running past watchdog deadline",
			"algorithm", name.Display(),
			"length", m,
			"deadline", after,
		)
	})
	return func() { timer.Stop() }
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package verify

import "bytes"

// Count is the brute-force reference: the number of possibly overlapping
// occurrences of p in t. An empty pattern occurs zero times.
func Count(p, t []byte) int {
	m := len(p)
	if m == 0 || m > len(t) {
		return 0
	}
	n := 0
	for i := 0; i+m <= len(t); i++ {
		if t[i] == p[0] && bytes.Equal(t[i:i+m], p) {
			n++
		}
	}
	return n
}

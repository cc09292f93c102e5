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

// Status is the outcome of one (algorithm, length) cell.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusTimeout
	StatusNotApplicable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusTimeout:
		return "timeout"
	case StatusNotApplicable:
		return "not-applicable"
	default:
		return "unknown"
	}
}

// Tag is the bracketed marker printed at the end of a progress line.
func (s Status) Tag() string {
	switch s {
	case StatusOK:
		return "[OK]"
	case StatusError:
		return "[ERROR]"
	case StatusTimeout:
		return "[OUT]"
	default:
		return "[--]"
	}
}

// Result aggregates the trials of one algorithm at one pattern length.
// Timing fields are only meaningful when Status is StatusOK.
type Result struct {
	Algorithm registry.Name
	Length    int
	Status    Status

	MeanSearchMs     float64
	StdSearchMs      float64
	MeanPreprocessMs float64

	// AvgOccurrences is TotalOccurrences / NumRuns, truncated.
	AvgOccurrences   int
	TotalOccurrences int
	Trials           int
}

// Report is everything one call to Driver.Run measured.
type Report struct {
	Code    string
	RunID   string
	Corpus  string
	Started time.Time
	NumRuns int
	Lengths []int
	Results []Result
}

// Result looks up the cell for algo at length m.
func (r *Report) Result(algo registry.Name, m int) (Result, bool) {
	for _, res := range r.Results {
		if res.Length == m && res.Algorithm.Equal(algo) {
			return res, true
		}
	}
	return Result{}, false
}

// Counts tallies results by status.
func (r *Report) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, res := range r.Results {
		out[res.Status]++
	}
	return out
}

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
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/ux"
)

const (
	edgeWidth   = 60
	prefixWidth = 35
	tagWidth    = 8
	timingWidth = 25
)

// Progress writes the per-cell lines of a run. The percentage ticker is
// only drawn on a terminal and is throttled.
type Progress struct {
	w   io.Writer
	tty bool

	ticker rate.Sometimes
	prefix string
	ticked bool
}

// NewProgress writes to w. tty enables the in-place ticker.
func NewProgress(w io.Writer, tty bool) *Progress {
	return &Progress{
		w:      w,
		tty:    tty,
		ticker: rate.Sometimes{Interval: 100 * time.Millisecond},
	}
}

// Header opens a run over one corpus.
func (p *Progress) Header(code, runID, corpusDesc string, started time.Time) {
	fmt.Fprintf(p.w, "\tStarting experimental tests with code %s (run %s)\n", code, runID)
	fmt.Fprintf(p.w, "\t%s\n", corpusDesc)
	fmt.Fprintf(p.w, "\tExperimental tests started on %s\n", started.Format("2006:01:02 15:04:05"))
}

// Banner opens one pattern length.
func (p *Progress) Banner(corpusName, code string, numRuns, m, numAlgos int) {
	fmt.Fprintln(p.w)
	p.edge()
	fmt.Fprintf(p.w, "\tExperimental results on %s: %s\n", corpusName, code)
	fmt.Fprintf(p.w, "\tSearching for a set of %d patterns with length %d\n", numRuns, m)
	fmt.Fprintf(p.w, "\tTesting %d algorithms\n\n", numAlgos)
}

// Footer closes one pattern length.
func (p *Progress) Footer() {
	fmt.Fprintln(p.w)
	p.edge()
}

func (p *Progress) edge() {
	fmt.Fprintf(p.w, "\t%s\n", strings.Repeat("_", edgeWidth))
}

// StartCell prints the dotted algorithm prefix.
func (p *Progress) StartCell(idx, total int, name registry.Name) {
	head := fmt.Sprintf("\t - [%d/%d] %s ", idx, total, name.Display())
	if n := prefixWidth - len(head); n > 0 {
		head += strings.Repeat(".", n)
	}
	p.prefix = head
	p.ticked = false
	fmt.Fprint(p.w, head)
}

// Tick redraws the percentage after trial k of total.
func (p *Progress) Tick(k, total int) {
	if !p.tty || !ux.ShouldShowProgress() {
		return
	}
	p.ticker.Do(func() {
		fmt.Fprintf(p.w, "\r%s[%3d%%]", p.prefix, 100*k/total)
		p.ticked = true
	})
}

// FinishCell prints the terminal tag and timings for r.
func (p *Progress) FinishCell(r Result, opts Options) {
	if p.ticked {
		fmt.Fprintf(p.w, "\r%s", p.prefix)
	}
	fmt.Fprint(p.w, ux.StatusTag(r.Status.Tag()), strings.Repeat(" ", tagWidth-len(r.Status.Tag())))
	if r.Status == StatusOK {
		fmt.Fprint(p.w, FormatTiming(r, opts))
		if opts.ReportOccurrences {
			fmt.Fprintf(p.w, "\tocc %d", r.AvgOccurrences)
		}
	}
	fmt.Fprintln(p.w)
}

// FormatTiming renders the timing column of an OK line, padded to a fixed
// width.
func FormatTiming(r Result, opts Options) string {
	var s string
	if opts.PreSeparately {
		s = fmt.Sprintf("%.2f + [%.2f ± %.2f] ms", r.MeanPreprocessMs, r.MeanSearchMs, r.StdSearchMs)
	} else {
		s = fmt.Sprintf("[%.2f ± %.2f] ms", r.MeanSearchMs, r.StdSearchMs)
	}
	if n := timingWidth - len([]rune(s)); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s
}

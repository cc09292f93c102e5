// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package verify checks algorithms against a brute-force reference.
//
// Each algorithm runs a fixed battery of edge cases and then, for every
// pattern length, randomized texts with the pattern planted at known
// offsets plus decoy texts. A negative return means the algorithm declines
// the input and is counted apart from failures.
package verify

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/AleutianAI/smart/cmd/smart/internal/corpus"
	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/logging"
	"github.com/AleutianAI/smart/pkg/ux"
)

// DefaultRounds is the number of randomized cases per length.
const DefaultRounds = 100

// Options controls a test run.
type Options struct {
	// Lengths replaces the default lengths when non-empty. See WithDefault.
	Lengths []int

	// Rounds overrides DefaultRounds when positive.
	Rounds int

	// Quick divides the rounds by ten.
	Quick bool

	// Debug re-runs every failing case through debugSearch.
	Debug bool

	// FailOnly suppresses pass lines.
	FailOnly bool
}

func (o Options) rounds() int {
	r := o.Rounds
	if r <= 0 {
		r = DefaultRounds
	}
	if o.Quick {
		r /= 10
	}
	return max(r, 1)
}

// Failure is one case whose count disagreed with the reference.
type Failure struct {
	Case     string
	Expected int
	Got      int
}

// AlgoSummary tallies one algorithm.
type AlgoSummary struct {
	Name     registry.Name
	Passed   int
	Failed   int
	Declined int
	Failures []Failure
}

// Summary is the result of Tester.Test.
type Summary struct {
	Algorithms []AlgoSummary
}

// Failed reports whether any algorithm failed any case.
func (s *Summary) Failed() bool {
	for _, a := range s.Algorithms {
		if a.Failed > 0 {
			return true
		}
	}
	return false
}

// Tester runs the battery.
type Tester struct {
	Out    io.Writer
	Logger *logging.Logger
	Rand   *rand.Rand
}

// New returns a tester drawing randomness from gen.
func New(out io.Writer, gen *pattern.Generator, logger *logging.Logger) *Tester {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Tester{Out: out, Logger: logger, Rand: gen.Rand()}
}

// WithDefault returns the default test lengths merged with extra, sorted,
// without duplicates and limited to 1..TextLength.
func WithDefault(extra []int) []int {
	out := append(pattern.TestDefault.Lengths(TextLength), extra...)
	out = slices.DeleteFunc(out, func(m int) bool { return m < 1 || m > TextLength })
	slices.Sort(out)
	return slices.Compact(out)
}

// Test runs every usable algorithm of table. ctx is checked between
// algorithms and lengths.
func (t *Tester) Test(ctx context.Context, table *loader.Table, opts Options) (*Summary, error) {
	lengths := opts.Lengths
	if len(lengths) == 0 {
		lengths = pattern.TestDefault.Lengths(TextLength)
	}
	rounds := opts.rounds()

	summary := &Summary{}
	for _, a := range table.Usable() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(t.Out, "\n\tTesting %s\n", a.Name.Display())
		s := AlgoSummary{Name: a.Name}

		fixed := FixedCases(t.Rand)
		for _, c := range fixed {
			t.check(a, c, opts, &s, true)
		}

		for _, m := range lengths {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if m < 1 || m > TextLength {
				continue
			}
			before := s
			for r := range rounds {
				alpha := Alphabets[r%len(Alphabets)]
				t.check(a, RandomCase(t.Rand, m, alpha, true), opts, &s, false)
				t.check(a, RandomCase(t.Rand, m, alpha, false), opts, &s, false)
			}
			failed := s.Failed - before.Failed
			tag := "[PASS]"
			if failed > 0 {
				tag = "[FAIL]"
			}
			if failed > 0 || !opts.FailOnly {
				t.line(tag, fmt.Sprintf("random m=%d: %d passed, %d failed, %d declined",
					m, s.Passed-before.Passed, failed, s.Declined-before.Declined))
			}
		}

		fmt.Fprintf(t.Out, "\t%s: %d passed, %d failed, %d declined\n",
			a.Name.Display(), s.Passed, s.Failed, s.Declined)
		summary.Algorithms = append(summary.Algorithms, s)
	}
	return summary, nil
}

// check runs one case. Buffers get the same headroom a benchmark run
// provides.
func (t *Tester) check(a *loader.Algorithm, c Case, opts Options, s *AlgoSummary, verbose bool) {
	p := make([]byte, len(c.Pattern), pattern.MaxLength+1)
	copy(p, c.Pattern)
	text := make([]byte, len(c.Text), len(c.Text)+corpus.Headroom)
	copy(text, c.Text)

	var timing loader.Timing
	got := a.Search(p, text, &timing)
	switch {
	case got < 0:
		s.Declined++
		if verbose && !opts.FailOnly {
			t.line("[--]", c.Name)
		}
	case got == c.Expected:
		s.Passed++
		if verbose && !opts.FailOnly {
			t.line("[PASS]", c.Name)
		}
	default:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Case: c.Name, Expected: c.Expected, Got: got})
		t.line("[FAIL]", fmt.Sprintf("%s: expected %d, got %d", c.Name, c.Expected, got))
		if opts.Debug {
			copy(p, c.Pattern)
			copy(text, c.Text)
			timing.Reset()
			again := debugSearch(a.Search, p, text, &timing)
			t.Logger.Warn("debug re-run of failing case",
				"algorithm", a.Name.Display(), "case", c.Name, "expected", c.Expected, "got", again)
		}
	}
}

func (t *Tester) line(tag, msg string) {
	fmt.Fprintf(t.Out, "\t  %s %s\n", ux.StatusTag(tag), msg)
}

// debugSearch is a stable frame to break on when chasing a failing case.
//
//go:noinline
func debugSearch(fn loader.SearchFunc, p, text []byte, timing *loader.Timing) int {
	return fn(p, text, timing)
}

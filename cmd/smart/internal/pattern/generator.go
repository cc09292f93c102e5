// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pattern

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrPatternTooLong is returned when m exceeds the text length.
var ErrPatternTooLong = errors.New("pattern longer than text")

// Batch is a set of patterns of identical length. Each pattern's backing
// array holds one extra zero byte past its length.
type Batch struct {
	Length   int
	Patterns [][]byte

	// Offsets records where each pattern was copied from, or -1 for a
	// fixed user pattern.
	Offsets []int
}

// Len returns the number of patterns.
func (b *Batch) Len() int { return len(b.Patterns) }

// Generator draws patterns from one seeded PRNG. Not safe for concurrent use.
type Generator struct {
	seed uint64
	rng  *rand.Rand
}

// NewGenerator returns a generator whose sequence is fully determined by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() uint64 { return g.seed }

// Rand exposes the underlying PRNG so every random draw of a run comes from
// the same stream.
func (g *Generator) Rand() *rand.Rand { return g.rng }

// Batch copies k substrings of length m from text at offsets drawn
// uniformly from [0, n-m].
func (g *Generator) Batch(text []byte, m, k int) (*Batch, error) {
	n := len(text)
	if m < 0 || k < 0 {
		return nil, fmt.Errorf("invalid batch: length %d, count %d", m, k)
	}
	if m > n {
		return nil, fmt.Errorf("%w: %d > %d", ErrPatternTooLong, m, n)
	}
	b := &Batch{Length: m, Patterns: make([][]byte, k), Offsets: make([]int, k)}
	for i := range k {
		off := g.rng.IntN(n - m + 1)
		b.Offsets[i] = off
		b.Patterns[i] = withSentinel(text[off : off+m])
	}
	return b, nil
}

// Fixed repeats p k times.
func Fixed(p []byte, k int) *Batch {
	b := &Batch{Length: len(p), Patterns: make([][]byte, k), Offsets: make([]int, k)}
	for i := range k {
		b.Patterns[i] = withSentinel(p)
		b.Offsets[i] = -1
	}
	return b
}

func withSentinel(src []byte) []byte {
	p := make([]byte, len(src), len(src)+1)
	copy(p, src)
	return p
}

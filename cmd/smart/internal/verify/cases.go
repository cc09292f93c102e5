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

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"slices"
)

// TextLength is the size of every randomized text.
const TextLength = 2048

// Alphabets are the alphabet sizes the randomized cases cycle through.
var Alphabets = []int{2, 4, 16, 256}

// Case is one (pattern, text) pair with its expected count.
type Case struct {
	Name     string
	Pattern  []byte
	Text     []byte
	Expected int
}

// FixedCases returns the deterministic battery. rng picks which bytes of
// the full-alphabet text are probed.
func FixedCases(rng *rand.Rand) []Case {
	abc := []byte("abcdefgh")
	changed := slices.Clone(abc)
	changed[len(changed)-1] = 'z'
	oneLetter := bytes.Repeat([]byte("a"), 64)

	cases := []Case{
		{Name: "empty pattern", Pattern: []byte{}, Text: abc, Expected: 0},
		{Name: "single letter text", Pattern: []byte("a"), Text: oneLetter, Expected: len(oneLetter)},
		{Name: "pattern equals text", Pattern: abc, Text: abc, Expected: 1},
		{Name: "last byte changed", Pattern: changed, Text: abc, Expected: 0},
		{Name: "overlapping", Pattern: []byte("aaaa"), Text: []byte("aaaaaaa"), Expected: 4},
		{Name: "repeated", Pattern: []byte("abc"), Text: []byte("abcabcabc"), Expected: 3},
		{Name: "no match", Pattern: []byte("xyz"), Text: abc, Expected: 0},
	}

	alphabet := make([]byte, 256)
	for i := range alphabet {
		alphabet[i] = byte(i)
	}
	for _, b := range rng.Perm(256)[:16] {
		cases = append(cases, Case{
			Name:     fmt.Sprintf("alphabet byte %d", b),
			Pattern:  []byte{byte(b)},
			Text:     alphabet,
			Expected: 1,
		})
	}
	return cases
}

// RandomCase builds a random text over alpha symbols with a random pattern
// of length m. Planted cases copy the pattern into 1 to 4 random offsets;
// decoys are left as drawn. Expected always comes from Count.
func RandomCase(rng *rand.Rand, m, alpha int, planted bool) Case {
	text := make([]byte, TextLength)
	for i := range text {
		text[i] = byte(rng.IntN(alpha))
	}
	p := make([]byte, m)
	for i := range p {
		p[i] = byte(rng.IntN(alpha))
	}
	kind := "decoy"
	if planted {
		kind = "planted"
		for range 1 + rng.IntN(4) {
			off := rng.IntN(TextLength - m + 1)
			copy(text[off:], p)
		}
	}
	return Case{
		Name:     fmt.Sprintf("%s m=%d alphabet=%d", kind, m, alpha),
		Pattern:  p,
		Text:     text,
		Expected: Count(p, text),
	}
}

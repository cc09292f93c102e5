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
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/pkg/logging"
	"github.com/AleutianAI/smart/pkg/ux"
)

func init() {
	ux.SetPersonalityLevel(ux.PersonalityMachine)
}

func reference(p, t []byte, _ *loader.Timing) int { return Count(p, t) }

// nonOverlapping is a classic bug: it skips past each match.
func nonOverlapping(p, t []byte, _ *loader.Timing) int {
	if len(p) == 0 {
		return 0
	}
	return bytes.Count(t, p)
}

func TestCount(t *testing.T) {
	tests := []struct {
		p, t string
		want int
	}{
		{"abc", "abcabcabc", 3},
		{"aaaa", "aaaaaaa", 4},
		{"xyz", "abcdefgh", 0},
		{"", "abc", 0},
		{"abcd", "abc", 0},
		{"abc", "abc", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Count([]byte(tt.p), []byte(tt.t)), "%q in %q", tt.p, tt.t)
	}
}

func TestFixedCases_Expectations(t *testing.T) {
	for _, c := range FixedCases(rand.New(rand.NewPCG(1, 1))) {
		assert.Equal(t, c.Expected, Count(c.Pattern, c.Text), c.Name)
	}
}

func TestRandomCase_Planted(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, alpha := range Alphabets {
		c := RandomCase(rng, 16, alpha, true)
		assert.Len(t, c.Text, TextLength)
		assert.GreaterOrEqual(t, c.Expected, 1, c.Name)
		assert.Equal(t, Count(c.Pattern, c.Text), c.Expected)
	}
}

func newTester(out *bytes.Buffer) *Tester {
	return New(out, pattern.NewGenerator(5), logging.Nop())
}

func TestTest_ReferencePasses(t *testing.T) {
	var out bytes.Buffer
	table := loader.NewTable(loader.Static("bf", reference))

	summary, err := newTester(&out).Test(context.Background(), table, Options{Lengths: []int{1, 4, 32}, Quick: true})
	require.NoError(t, err)
	require.Len(t, summary.Algorithms, 1)

	s := summary.Algorithms[0]
	assert.False(t, summary.Failed())
	assert.Zero(t, s.Failed)
	assert.Zero(t, s.Declined)
	// 23 fixed cases plus 3 lengths x 10 rounds x (planted + decoy)
	assert.Equal(t, 23+3*10*2, s.Passed)
	assert.Contains(t, out.String(), "[PASS] overlapping")
	assert.Contains(t, out.String(), "BF: 83 passed, 0 failed, 0 declined")
}

func TestTest_DetectsNonOverlappingBug(t *testing.T) {
	var out bytes.Buffer
	table := loader.NewTable(loader.Static("buggy", nonOverlapping))

	summary, err := newTester(&out).Test(context.Background(), table, Options{Lengths: []int{2}, Rounds: 10, FailOnly: true})
	require.NoError(t, err)
	assert.True(t, summary.Failed())

	var names []string
	for _, f := range summary.Algorithms[0].Failures {
		names = append(names, f.Case)
	}
	assert.Contains(t, names, "overlapping")
	assert.NotContains(t, out.String(), "[PASS]")
	assert.Contains(t, out.String(), "[FAIL] overlapping: expected 4, got 1")
}

func TestTest_PerLengthLineReportsFailures(t *testing.T) {
	offByOneAtTwo := func(p, t []byte, _ *loader.Timing) int {
		if len(p) == 2 {
			return Count(p, t) + 1
		}
		return Count(p, t)
	}
	var out bytes.Buffer
	table := loader.NewTable(loader.Static("buggy", offByOneAtTwo))

	_, err := newTester(&out).Test(context.Background(), table, Options{Lengths: []int{1, 2}, Rounds: 10})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[PASS] random m=1: 20 passed, 0 failed, 0 declined")
	assert.Contains(t, out.String(), "[FAIL] random m=2: 0 passed, 20 failed, 0 declined")
	assert.NotContains(t, out.String(), "[PASS] random m=2:")
}

func TestWithDefault(t *testing.T) {
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32}, WithDefault(nil))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 8, 16, 32, 64}, WithDefault([]int{3, 5, 4, 64}))
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32}, WithDefault([]int{0, -1, TextLength + 1}))
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32, TextLength}, WithDefault([]int{TextLength}))
}

func TestTest_DeclinedIsNotFailure(t *testing.T) {
	declines := func(p, t []byte, _ *loader.Timing) int {
		if len(p) < 4 {
			return -1
		}
		return Count(p, t)
	}
	table := loader.NewTable(loader.Static("long", declines))
	summary, err := newTester(&bytes.Buffer{}).Test(context.Background(), table, Options{Lengths: []int{2, 8}, Rounds: 10})
	require.NoError(t, err)

	s := summary.Algorithms[0]
	assert.False(t, summary.Failed())
	assert.Positive(t, s.Declined)
	assert.Equal(t, 10*2, s.Passed-countLongFixed())
}

// countLongFixed counts fixed cases whose pattern has at least 4 bytes.
func countLongFixed() int {
	n := 0
	for _, c := range FixedCases(rand.New(rand.NewPCG(0, 0))) {
		if len(c.Pattern) >= 4 {
			n++
		}
	}
	return n
}

func TestTest_DebugReinvokes(t *testing.T) {
	calls := 0
	wrong := func(p, t []byte, _ *loader.Timing) int {
		calls++
		return 99
	}
	table := loader.NewTable(loader.Static("wrong", wrong))
	summary, err := newTester(&bytes.Buffer{}).Test(context.Background(), table, Options{Lengths: []int{1}, Rounds: 1, Debug: true})
	require.NoError(t, err)

	s := summary.Algorithms[0]
	assert.Equal(t, s.Failed*2, calls)
}

func TestTest_DefaultLengths(t *testing.T) {
	var out bytes.Buffer
	table := loader.NewTable(loader.Static("bf", reference))
	_, err := newTester(&out).Test(context.Background(), table, Options{Rounds: 1})
	require.NoError(t, err)
	for _, m := range []string{"m=1:", "m=2:", "m=4:", "m=8:", "m=16:", "m=32:"} {
		assert.Contains(t, out.String(), m)
	}
	assert.NotContains(t, out.String(), "m=64:")
}

func TestTest_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	table := loader.NewTable(loader.Static("bf", reference))
	_, err := newTester(&bytes.Buffer{}).Test(ctx, table, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Rounds(t *testing.T) {
	assert.Equal(t, DefaultRounds, Options{}.rounds())
	assert.Equal(t, 10, Options{Quick: true}.rounds())
	assert.Equal(t, 1, Options{Rounds: 5, Quick: true}.rounds())
	assert.Equal(t, 7, Options{Rounds: 7}.rounds())
}

func TestDebugSearch(t *testing.T) {
	var tm loader.Timing
	assert.Equal(t, 3, debugSearch(reference, []byte("ab"), []byte(strings.Repeat("ab", 3)), &tm))
}

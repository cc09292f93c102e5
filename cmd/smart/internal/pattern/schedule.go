// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pattern enumerates pattern lengths and draws pattern batches from
// a text.
package pattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxLength is the longest pattern a run may use.
const MaxLength = 4200

// ErrInvalidSchedule is returned by Validate and the parsers.
var ErrInvalidSchedule = errors.New("invalid pattern length schedule")

// Op is the increment operator of a Schedule.
type Op byte

const (
	OpAdd Op = '+'
	OpMul Op = '*'
)

func (o Op) String() string { return string(rune(o)) }

// Schedule describes the pattern lengths of a run.
type Schedule struct {
	Min  int
	Max  int
	Op   Op
	Step int
}

var (
	// Default is the run schedule: 2, 4, 8, ... 4096.
	Default = Schedule{Min: 2, Max: 4096, Op: OpMul, Step: 2}

	// Short is selected by -short: 2, 4, ... 32.
	Short = Schedule{Min: 2, Max: 32, Op: OpAdd, Step: 2}

	// VeryShort is selected by -vshort: 1, 2, ... 16.
	VeryShort = Schedule{Min: 1, Max: 16, Op: OpAdd, Step: 1}

	// TestDefault is the correctness tester's schedule: 1, 2, 4, ... 32.
	TestDefault = Schedule{Min: 1, Max: 32, Op: OpMul, Step: 2}
)

// Single is the schedule containing only l.
func Single(l int) Schedule {
	return Schedule{Min: l, Max: l, Op: OpAdd, Step: 1}
}

// Validate rejects unknown operators, non-positive steps and bad bounds.
// Patterns are never empty, so Min is at least 1.
func (s Schedule) Validate() error {
	switch {
	case s.Op != OpAdd && s.Op != OpMul:
		return fmt.Errorf("%w: unknown increment operator %q", ErrInvalidSchedule, string(rune(s.Op)))
	case s.Step <= 0:
		return fmt.Errorf("%w: increment must be positive, got %d", ErrInvalidSchedule, s.Step)
	case s.Min < 1:
		return fmt.Errorf("%w: minimum length must be at least 1, got %d", ErrInvalidSchedule, s.Min)
	case s.Max < s.Min:
		return fmt.Errorf("%w: maximum length %d is below minimum %d", ErrInvalidSchedule, s.Max, s.Min)
	case s.Max > MaxLength:
		return fmt.Errorf("%w: maximum length %d exceeds %d", ErrInvalidSchedule, s.Max, MaxLength)
	}
	return nil
}

// Next returns the length after cur. It always advances by at least one.
func (s Schedule) Next(cur int) int {
	var next int
	if s.Op == OpMul {
		next = cur * s.Step
	} else {
		next = cur + s.Step
	}
	if next <= cur {
		return cur + 1
	}
	return next
}

// Lengths enumerates the schedule, bounded by min(Max, textSize). A
// non-positive textSize leaves Max as the only bound.
func (s Schedule) Lengths(textSize int) []int {
	limit := s.Max
	if textSize > 0 && textSize < limit {
		limit = textSize
	}
	var out []int
	for l := s.Min; l <= limit; l = s.Next(l) {
		out = append(out, l)
	}
	return out
}

func (s Schedule) String() string {
	return fmt.Sprintf("%d..%d %s%d", s.Min, s.Max, s.Op, s.Step)
}

// ParseOp parses "+" or "*".
func ParseOp(s string) (Op, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return OpAdd, nil
	case "*", "x":
		return OpMul, nil
	}
	return 0, fmt.Errorf("%w: unknown increment operator %q", ErrInvalidSchedule, s)
}

// ParseIncrement accepts the operator and value separately ("+", "2") or
// combined in op ("+2", "*4") with an empty value.
func ParseIncrement(op, value string) (Op, int, error) {
	op = strings.TrimSpace(op)
	if value == "" && len(op) > 1 {
		op, value = op[:1], op[1:]
	}
	o, err := ParseOp(op)
	if err != nil {
		return 0, 0, err
	}
	step, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: increment value %q: %v", ErrInvalidSchedule, value, err)
	}
	if step <= 0 {
		return 0, 0, fmt.Errorf("%w: increment must be positive, got %d", ErrInvalidSchedule, step)
	}
	return o, step, nil
}

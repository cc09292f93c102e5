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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
)

var (
	// ErrNoAlgorithms is returned when the table has no usable slot.
	ErrNoAlgorithms = errors.New("no usable algorithms to run")

	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("invalid benchmark options")
)

var optionsValidate = validator.New()

// Options controls a benchmark run.
type Options struct {
	// NumRuns is the number of trials, and patterns, per cell.
	NumRuns int `validate:"gt=0"`

	// TimeLimit is the per-trial budget. A trial slower than this marks the
	// cell [OUT].
	TimeLimit time.Duration `validate:"gt=0"`

	// PreSeparately reports preprocessing apart from search time. When
	// false the two are summed into the measured time.
	PreSeparately bool

	// ReportOccurrences appends the average occurrence count to OK lines.
	ReportOccurrences bool

	// AllowZero accepts a zero count on the first trial. Set when the user
	// supplies the pattern, which need not occur in the text.
	AllowZero bool

	// Pattern replaces generated batches with one user pattern.
	Pattern []byte `validate:"omitempty,max=4200"`

	// WatchdogFactor arms a warning at WatchdogFactor x TimeLimit for every
	// call. Zero disables it.
	WatchdogFactor float64 `validate:"gte=0"`
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if err := optionsValidate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if len(o.Pattern) > pattern.MaxLength {
		return fmt.Errorf("%w: pattern longer than %d", ErrInvalidOptions, pattern.MaxLength)
	}
	return nil
}

func (o Options) limitMs() float64 {
	return float64(o.TimeLimit) / float64(time.Millisecond)
}

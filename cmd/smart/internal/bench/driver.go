// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bench runs timed benchmarks of loaded search algorithms.
//
// # Measurement
//
// For every pattern length the driver draws one batch of NumRuns patterns
// from the text and runs each usable algorithm over the whole batch, one
// trial per pattern. Plugins report their own timings in milliseconds. A
// cell ends early when the algorithm declines the input, reports no
// occurrence on its first trial, or exceeds the per-trial time limit.
//
// # Thread Safety
//
// Trials run sequentially on the calling goroutine. The only concurrent
// activity is the optional watchdog timer, which only logs.
package bench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/smart/cmd/smart/internal/corpus"
	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/pkg/logging"
)

// Driver runs benchmark cells. One Driver serves every corpus of an
// experiment so they share the experiment code and run id.
type Driver struct {
	// Code is the experiment code, EXP followed by the start time in unix
	// seconds.
	Code string

	// RunID uniquely identifies this invocation.
	RunID string

	Generator *pattern.Generator
	Progress  *Progress
	Logger    *logging.Logger
	Metrics   *Metrics
	Tracer    trace.Tracer
	Now       func() time.Time
}

// NewDriver builds a driver that prints to out.
func NewDriver(out io.Writer, tty bool, gen *pattern.Generator, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.Nop()
	}
	now := time.Now
	return &Driver{
		Code:      fmt.Sprintf("EXP%d", now().Unix()),
		RunID:     uuid.NewString(),
		Generator: gen,
		Progress:  NewProgress(out, tty),
		Logger:    logger,
		Now:       now,
	}
}

// Run benchmarks every usable algorithm of table on c at each length.
// Lengths longer than the text are skipped. ctx is checked between cells.
func (d *Driver) Run(ctx context.Context, table *loader.Table, c *corpus.Corpus, lengths []int, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	algos := table.Usable()
	if len(algos) == 0 {
		return nil, ErrNoAlgorithms
	}
	if opts.Pattern != nil {
		lengths = []int{len(opts.Pattern)}
	}

	report := &Report{
		Code:    d.Code,
		RunID:   d.RunID,
		Corpus:  c.Name,
		Started: d.Now(),
		NumRuns: opts.NumRuns,
	}
	d.Progress.Header(d.Code, d.RunID, c.Describe(), report.Started)

	text := c.Bytes()
	work := make([]byte, 0, pattern.MaxLength+1)

	for _, m := range lengths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if m > len(text) || m > pattern.MaxLength {
			d.Logger.Warn("skipping pattern length longer than the text", "length", m, "text", len(text))
			continue
		}

		batch, err := d.batch(text, m, opts)
		if err != nil {
			return report, err
		}
		report.Lengths = append(report.Lengths, m)

		d.Progress.Banner(c.Name, d.Code, opts.NumRuns, m, len(algos))
		for i, a := range algos {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			d.Progress.StartCell(i+1, len(algos), a.Name)
			res := d.runCell(ctx, a, batch, text, work, opts)
			d.Progress.FinishCell(res, opts)
			d.Metrics.ObserveCell(res)
			report.Results = append(report.Results, res)
		}
		d.Progress.Footer()
	}
	return report, nil
}

func (d *Driver) batch(text []byte, m int, opts Options) (*pattern.Batch, error) {
	if opts.Pattern != nil {
		return pattern.Fixed(opts.Pattern, opts.NumRuns), nil
	}
	return d.Generator.Batch(text, m, opts.NumRuns)
}

// runCell runs every trial of one algorithm at one length.
func (d *Driver) runCell(ctx context.Context, a *loader.Algorithm, batch *pattern.Batch, text, work []byte, opts Options) Result {
	m := batch.Length
	name := a.Name.Canonical()
	_, span := d.startCellSpan(ctx, name, m)

	res := Result{Algorithm: a.Name, Length: m, Status: StatusOK}
	limit := opts.limitMs()
	times := make([]float64, 0, opts.NumRuns)
	var preSum float64
	var occ int
	var timing loader.Timing

	for k, p := range batch.Patterns {
		buf := work[:m+1]
		copy(buf, p)
		buf[m] = 0

		timing.Reset()
		disarm := d.armWatchdog(a.Name, m, opts)
		o := a.Search(buf[:m], text, &timing)
		disarm()
		d.Metrics.CountTrial(name)
		d.Progress.Tick(k+1, opts.NumRuns)

		if o < 0 {
			res.Status = StatusNotApplicable
			break
		}
		if o == 0 && k == 0 && !opts.AllowZero {
			res.Status = StatusError
			break
		}
		elapsed := timing.SearchMs
		if !opts.PreSeparately {
			elapsed += timing.PreprocessMs
		}
		if elapsed > limit {
			res.Status = StatusTimeout
			break
		}
		times = append(times, elapsed)
		preSum += timing.PreprocessMs
		occ += o
		d.Metrics.ObserveTrial(name, m, timing)
	}

	if res.Status == StatusOK {
		res.Trials = len(times)
		res.MeanSearchMs = Mean(times)
		res.StdSearchMs = PopulationStd(times, res.MeanSearchMs)
		res.MeanPreprocessMs = preSum / float64(opts.NumRuns)
		res.TotalOccurrences = occ
		res.AvgOccurrences = occ / opts.NumRuns
	}
	d.Logger.Debug("cell finished", "algorithm", a.Name.Display(), "length", m, "status", res.Status.String())
	endCellSpan(span, res)
	return res
}

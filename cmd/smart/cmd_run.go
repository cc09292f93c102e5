// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/smart/cmd/smart/config"
	"github.com/AleutianAI/smart/cmd/smart/internal/bench"
	"github.com/AleutianAI/smart/cmd/smart/internal/corpus"
	"github.com/AleutianAI/smart/cmd/smart/internal/cpupin"
	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/cmd/smart/internal/selection"
	"github.com/AleutianAI/smart/pkg/ux"
	"github.com/spf13/cobra"
)

type runOptions struct {
	lengthFlags

	textFiles  []string
	randAlpha  int
	data       string
	short      bool
	veryShort  bool
	pattern    string
	use        string
	all        bool
	numRuns    int
	textSize   int
	timeBound  float64
	fillBuffer bool
	seed       uint64
	pre        bool
	occ        bool
	pin        string
	cpuStats   string

	metricsFile string
	traceFile   string
	watchdog    float64
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}
	runCmd := &cobra.Command{
		Use:   "run [algo regex...]",
		Short: "Benchmark algorithms on one or more texts",
		Long: `Benchmark algorithms on one or more texts.

Algorithms are given as POSIX regular expressions matched against every
algorithm on the search paths, e.g. "smart run bsdm.* hor". Without names,
the selected list is used (see "smart select").

Each text given with --text-files is a separate experiment. For every
pattern length, every algorithm searches the same batch of patterns drawn
from the text; a cell is [OK], [ERROR] (no match on the first trial),
[OUT] (a trial over the time bound) or [--] (the algorithm declined).`,
		Example: `  smart run --text-files english.txt
  smart run hor bm --rand-text 4 --short-patterns
  smart run -text genome -plen 2 32 -inc + 2 -runs 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WrapExitError(a.runBenchmark(cmd, args, o), "run")
		},
	}

	f := runCmd.Flags()
	f.StringArrayVar(&o.textFiles, "text-files", nil, "Text file or directory to benchmark on; repeat for several experiments")
	f.IntVar(&o.randAlpha, "rand-text", 0, "Benchmark on a random text over an alphabet of this size (1-256)")
	f.StringVar(&o.data, "data-to-search", "", "Benchmark on this literal text")
	o.lengthFlags.register(runCmd, "benchmark")
	f.BoolVar(&o.short, "short-patterns", false, "Use short pattern lengths (2 to 32 incrementing by 2)")
	f.BoolVar(&o.veryShort, "very-short", false, "Use very short pattern lengths (1 to 16 incrementing by 1)")
	f.StringVar(&o.pattern, "pattern", "", "Search for this pattern instead of random ones")
	f.StringVar(&o.use, "use-algos", "", "Benchmark the saved algorithm list N")
	f.BoolVar(&o.all, "all-algos", false, "Benchmark every algorithm on the search paths")
	f.IntVar(&o.numRuns, "num-runs", 0, "Patterns searched per length (default from config)")
	f.IntVar(&o.textSize, "text-size", 0, "Maximum text buffer size in bytes (default from config)")
	f.Float64Var(&o.timeBound, "time-bound", 0, "Time limit per search in milliseconds (default from config)")
	f.BoolVar(&o.fillBuffer, "fill-buffer", false, "Replicate the text until the buffer is full")
	f.Uint64Var(&o.seed, "rand-seed", 0, "Random seed (default: current time)")
	f.BoolVar(&o.pre, "pre-time", false, "Report preprocessing time separately from search time")
	f.BoolVar(&o.occ, "occurrences", false, "Report the average number of occurrences found")
	f.StringVar(&o.pin, "pin-cpu", "", "Pin to a cpu: off, last, or a cpu index (default from config)")
	f.StringVar(&o.cpuStats, "cpu-stats", "", "CPU statistics to gather: first, last or branch (not collected by this build)")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics for every trial to this file")
	f.StringVar(&o.traceFile, "trace-file", "", "Write one OpenTelemetry span per cell to this file as JSON")
	f.Float64Var(&o.watchdog, "watchdog", 0, "Warn when a search runs longer than this multiple of the time bound (0 disables)")

	runCmd.MarkFlagsMutuallyExclusive("text-files", "rand-text", "data-to-search")
	runCmd.MarkFlagsOneRequired("text-files", "rand-text", "data-to-search")
	runCmd.MarkFlagsMutuallyExclusive("short-patterns", "very-short", "patt-len")
	runCmd.MarkFlagsMutuallyExclusive("use-algos", "all-algos")
	return runCmd
}

// applyDefaults fills every flag the user did not set from the config.
func (o *runOptions) applyDefaults(cmd *cobra.Command, d config.RunDefaults) {
	changed := cmd.Flags().Changed
	if !changed("num-runs") {
		o.numRuns = d.NumRuns
	}
	if !changed("text-size") {
		o.textSize = d.TextSize
	}
	if !changed("time-bound") {
		o.timeBound = d.TimeLimitMs
	}
	if !changed("pin-cpu") {
		o.pin = d.Pin
	}
	if !changed("watchdog") {
		o.watchdog = d.Watchdog
	}
	if !changed("rand-seed") {
		o.seed = uint64(time.Now().UnixNano())
	}
}

func (o *runOptions) schedule(a *app) (pattern.Schedule, error) {
	switch {
	case o.short:
		return o.lengthFlags.apply(pattern.Short)
	case o.veryShort:
		return o.lengthFlags.apply(pattern.VeryShort)
	}
	base, err := a.defaultSchedule()
	if err != nil {
		return base, err
	}
	return o.lengthFlags.apply(base)
}

func (o *runOptions) benchOptions() bench.Options {
	opts := bench.Options{
		NumRuns:           o.numRuns,
		TimeLimit:         time.Duration(o.timeBound * float64(time.Millisecond)),
		PreSeparately:     o.pre,
		ReportOccurrences: o.occ,
		WatchdogFactor:    o.watchdog,
	}
	if o.pattern != "" {
		// a user pattern need not occur in the text
		opts.Pattern = []byte(o.pattern)
		opts.AllowZero = true
	}
	return opts
}

// corpusSource builds one experiment's text on demand.
type corpusSource func() (*corpus.Corpus, error)

func (a *app) corpusSources(cmd *cobra.Command, o *runOptions, gen *pattern.Generator) []corpusSource {
	var sources []corpusSource
	switch {
	case len(o.textFiles) > 0:
		for _, name := range o.textFiles {
			sources = append(sources, func() (*corpus.Corpus, error) {
				return corpus.FromFiles(name, []string{name}, a.cfg.DataDirs, o.textSize)
			})
		}
	case cmd.Flags().Changed("rand-text"):
		sources = append(sources, func() (*corpus.Corpus, error) {
			return corpus.Random(o.randAlpha, o.textSize, gen.Rand())
		})
	case o.data != "":
		sources = append(sources, func() (*corpus.Corpus, error) {
			return corpus.Literal(o.data)
		})
	}
	return sources
}

func (a *app) runBenchmark(cmd *cobra.Command, args []string, o *runOptions) error {
	ctx := cmd.Context()
	o.applyDefaults(cmd, a.cfg.Defaults)

	sched, err := o.schedule(a)
	if err != nil {
		return err
	}
	opts := o.benchOptions()
	if err := opts.Validate(); err != nil {
		return err
	}
	if o.textSize <= 0 {
		return fmt.Errorf("%w: --text-size %d", corpus.ErrInvalidTextSize, o.textSize)
	}
	if o.cpuStats != "" {
		a.logger.Warn("cpu statistics are not collected by this build, ignoring --cpu-stats", "stats", o.cpuStats)
	}

	mode, err := cpupin.Parse(o.pin)
	if err != nil {
		return err
	}
	if cpu, err := cpupin.Pin(mode); err != nil {
		a.logger.Warn("cpu pinning failed, running unpinned", "pin", mode.String(), "error", err)
	} else if cpu >= 0 {
		a.logger.Info("pinned to cpu", "cpu", cpu)
	}

	set, err := a.selection().Resolve(ctx, selection.Source{
		Patterns: args,
		All:      o.all,
		Named:    o.use,
	})
	if err != nil {
		return fmt.Errorf("resolve algorithms: %w", err)
	}
	if set.Len() == 0 {
		return fmt.Errorf("%w: no algorithm matched, see \"smart select --show-all\"", bench.ErrNoAlgorithms)
	}

	table, err := a.loader().Load(set.Names())
	if err != nil {
		return fmt.Errorf("load algorithms: %w", err)
	}
	defer func() {
		if err := table.Close(); err != nil {
			a.logger.Warn("release algorithms", "error", err)
		}
	}()

	gen := pattern.NewGenerator(o.seed)
	a.logger.Info("starting benchmark", "seed", gen.Seed(), "schedule", sched.String(), "algorithms", set.Len())

	driver := bench.NewDriver(a.out, a.tty(), gen, a.logger)
	if o.metricsFile != "" {
		driver.Metrics = bench.NewMetrics()
	}
	if o.traceFile != "" {
		shutdown, err := a.startTracing(driver, o.traceFile)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	var reports []*bench.Report
	for _, src := range a.corpusSources(cmd, o, gen) {
		c, err := src()
		if err != nil {
			return fmt.Errorf("load text: %w", err)
		}
		if o.fillBuffer {
			c.Fill(o.textSize)
		}
		report, err := driver.Run(ctx, table, c, sched.Lengths(c.Len()), opts)
		if err != nil {
			return fmt.Errorf("benchmark %s: %w", c.Name, err)
		}
		reports = append(reports, report)
	}

	if o.metricsFile != "" {
		if err := driver.Metrics.WriteTextfile(o.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	a.summarize(driver.Code, reports)
	return nil
}

func (a *app) loader() *loader.Loader {
	l := loader.New(a.cfg.AlgoSearchPaths, a.logger)
	if a.opener != nil {
		l.Opener = a.opener
	}
	return l
}

// startTracing exports one span per cell to path. The returned func
// flushes the exporter and closes the file.
func (a *app) startTracing(driver *bench.Driver, path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	tp, err := bench.NewFileTracerProvider(f, version)
	if err != nil {
		f.Close()
		return nil, err
	}
	driver.Tracer = tp.Tracer("github.com/AleutianAI/smart/cmd/smart")
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			a.logger.Warn("flush trace file", "path", path, "error", err)
		}
		if err := f.Close(); err != nil {
			a.logger.Warn("close trace file", "path", path, "error", err)
		}
	}, nil
}

func (a *app) summarize(code string, reports []*bench.Report) {
	total := make(map[bench.Status]int)
	for _, r := range reports {
		for s, n := range r.Counts() {
			total[s] += n
		}
	}
	ux.Success(fmt.Sprintf("Experiment %s finished: %d ok, %d error, %d timeout, %d not applicable",
		code,
		total[bench.StatusOK],
		total[bench.StatusError],
		total[bench.StatusTimeout],
		total[bench.StatusNotApplicable]))
}

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
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/smart/cmd/smart/internal/corpus"
	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/logging"
	"github.com/AleutianAI/smart/pkg/ux"
)

func TestMain(m *testing.M) {
	ux.SetPersonalityLevel(ux.PersonalityMachine)
	os.Exit(m.Run())
}

// naive counts overlapping occurrences and reports 1ms of search time.
func naive(p, t []byte, tm *loader.Timing) int {
	tm.SearchMs = 1
	if len(p) == 0 {
		return 0
	}
	n := 0
	for i := 0; i+len(p) <= len(t); i++ {
		if bytes.Equal(t[i:i+len(p)], p) {
			n++
		}
	}
	return n
}

func newTestDriver(t *testing.T, out *bytes.Buffer) *Driver {
	t.Helper()
	d := NewDriver(out, false, pattern.NewGenerator(1), logging.Nop())
	return d
}

func literal(t *testing.T, s string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Literal(s)
	require.NoError(t, err)
	return c
}

func opts(runs int) Options {
	return Options{NumRuns: runs, TimeLimit: 300 * time.Millisecond}
}

// =============================================================================
// Scenario Tests
// =============================================================================

func TestRun_TrivialMatch(t *testing.T) {
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	table := loader.NewTable(loader.Static("bf", naive))
	o := opts(5)
	o.Pattern = []byte("abc")
	o.ReportOccurrences = true

	report, err := d.Run(context.Background(), table, literal(t, "abcabcabc"), nil, o)
	require.NoError(t, err)

	res, ok := report.Result("BF", 3)
	require.True(t, ok)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 3, res.AvgOccurrences)
	assert.Equal(t, 15, res.TotalOccurrences)
	assert.Equal(t, 5, res.Trials)
	assert.InDelta(t, 1.0, res.MeanSearchMs, 1e-9)
	assert.InDelta(t, 0.0, res.StdSearchMs, 1e-9)

	text := out.String()
	assert.Contains(t, text, "[1/1] BF ")
	assert.Contains(t, text, "[OK]")
	assert.Contains(t, text, "[1.00 ± 0.00] ms")
	assert.Contains(t, text, "occ 3")
	assert.Contains(t, text, "Searching for a set of 5 patterns with length 3")
	assert.Contains(t, text, d.Code)
}

func TestRun_Overlapping(t *testing.T) {
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	o := opts(3)
	o.Pattern = []byte("aaaa")

	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("bf", naive)), literal(t, "aaaaaaa"), nil, o)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Results[0].AvgOccurrences)
}

func TestRun_NoMatchOnFirstTrialIsError(t *testing.T) {
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	o := opts(3)
	o.Pattern = []byte("xyz")

	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("bf", naive)), literal(t, "abcdefgh"), nil, o)
	require.NoError(t, err)
	assert.Equal(t, StatusError, report.Results[0].Status)
	assert.Contains(t, out.String(), "[ERROR]")

	o.AllowZero = true
	report, err = d.Run(context.Background(), loader.NewTable(loader.Static("bf", naive)), literal(t, "abcdefgh"), nil, o)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Results[0].Status)
	assert.Equal(t, 0, report.Results[0].AvgOccurrences)
}

func TestRun_ZeroAfterFirstTrialIsAccepted(t *testing.T) {
	calls := 0
	fn := func(p, t []byte, tm *loader.Timing) int {
		calls++
		tm.SearchMs = 1
		if calls == 1 {
			return 2
		}
		return 0
	}
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("odd", fn)), literal(t, "abcdefgh"), []int{2}, opts(4))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Results[0].Status)
	assert.Equal(t, 4, report.Results[0].Trials)
}

func TestRun_Timeout(t *testing.T) {
	slow := func(p, t []byte, tm *loader.Timing) int {
		tm.SearchMs = 301
		return 1
	}
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("slow", slow)), literal(t, "abcdefgh"), []int{2}, opts(10))
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, report.Results[0].Status)
	assert.Zero(t, report.Results[0].MeanSearchMs)
	assert.Contains(t, out.String(), "[OUT]")
}

func TestRun_Declined(t *testing.T) {
	calls := 0
	declines := func(p, t []byte, tm *loader.Timing) int {
		calls++
		return -1
	}
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("nope", declines)), literal(t, "abcdefgh"), []int{2}, opts(10))
	require.NoError(t, err)
	assert.Equal(t, StatusNotApplicable, report.Results[0].Status)
	assert.Equal(t, 1, calls)
	assert.Contains(t, out.String(), "[--]")
}

func TestRun_PreprocessCombination(t *testing.T) {
	fn := func(p, t []byte, tm *loader.Timing) int {
		tm.SearchMs = 1
		tm.PreprocessMs = 2
		return 1
	}
	table := loader.NewTable(loader.Static("pre", fn))
	c := literal(t, "abcdefgh")

	var out bytes.Buffer
	d := newTestDriver(t, &out)
	combined, err := d.Run(context.Background(), table, c, []int{2}, opts(4))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, combined.Results[0].MeanSearchMs, 1e-9)
	assert.InDelta(t, 2.0, combined.Results[0].MeanPreprocessMs, 1e-9)

	o := opts(4)
	o.PreSeparately = true
	out.Reset()
	separate, err := d.Run(context.Background(), table, c, []int{2}, o)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, separate.Results[0].MeanSearchMs, 1e-9)
	assert.Contains(t, out.String(), "2.00 + [1.00 ± 0.00] ms")
}

func TestRun_PreprocessCountsTowardsTimeout(t *testing.T) {
	fn := func(p, t []byte, tm *loader.Timing) int {
		tm.SearchMs = 200
		tm.PreprocessMs = 200
		return 1
	}
	table := loader.NewTable(loader.Static("pre", fn))
	d := newTestDriver(t, &bytes.Buffer{})

	report, err := d.Run(context.Background(), table, literal(t, "abcdefgh"), []int{2}, opts(2))
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, report.Results[0].Status)

	o := opts(2)
	o.PreSeparately = true
	report, err = d.Run(context.Background(), table, literal(t, "abcdefgh"), []int{2}, o)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Results[0].Status)
}

// =============================================================================
// Ordering / determinism
// =============================================================================

func recorder(seen *[]string) loader.SearchFunc {
	return func(p, t []byte, tm *loader.Timing) int {
		*seen = append(*seen, string(p))
		return naive(p, t, tm)
	}
}

func TestRun_AlgorithmsShareBatch(t *testing.T) {
	var a, b []string
	table := loader.NewTable(loader.Static("a", recorder(&a)), loader.Static("b", recorder(&b)))
	d := newTestDriver(t, &bytes.Buffer{})
	text := strings.Repeat("the quick brown fox ", 50)

	report, err := d.Run(context.Background(), table, literal(t, text), []int{3, 5}, opts(8))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
	assert.Equal(t, []int{3, 5}, report.Lengths)

	var order []string
	for _, r := range report.Results {
		order = append(order, r.Algorithm.Canonical())
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
}

func TestRun_SameSeedSamePatterns(t *testing.T) {
	text := literal(t, strings.Repeat("abracadabra", 40))
	run := func() []string {
		var seen []string
		d := NewDriver(&bytes.Buffer{}, false, pattern.NewGenerator(99), logging.Nop())
		_, err := d.Run(context.Background(), loader.NewTable(loader.Static("a", recorder(&seen))), text, []int{2, 4, 8}, opts(10))
		require.NoError(t, err)
		return seen
	}
	assert.Equal(t, run(), run())
}

func TestRun_SkipsUnusableAndLongLengths(t *testing.T) {
	table := loader.NewTable(
		loader.Algorithm{Name: registry.Name("ghost")},
		loader.Static("bf", naive),
	)
	var out bytes.Buffer
	d := newTestDriver(t, &out)
	report, err := d.Run(context.Background(), table, literal(t, "abcd"), []int{2, 8}, opts(2))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, report.Lengths)
	require.Len(t, report.Results, 1)
	assert.Contains(t, out.String(), "Testing 1 algorithms")
}

func TestRun_Errors(t *testing.T) {
	d := newTestDriver(t, &bytes.Buffer{})
	c := literal(t, "abcd")

	_, err := d.Run(context.Background(), loader.NewTable(), c, []int{2}, opts(2))
	assert.ErrorIs(t, err, ErrNoAlgorithms)

	_, err = d.Run(context.Background(), loader.NewTable(loader.Static("bf", naive)), c, []int{2}, Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Run(ctx, loader.NewTable(loader.Static("bf", naive)), c, []int{2}, opts(2))
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Metrics / tracing / watchdog
// =============================================================================

func TestRun_MetricsAndSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	d := newTestDriver(t, &bytes.Buffer{})
	d.Metrics = NewMetrics()
	d.Tracer = tp.Tracer("test")

	declines := func(p, t []byte, tm *loader.Timing) int { return -1 }
	table := loader.NewTable(loader.Static("bf", naive), loader.Static("no", declines))
	_, err := d.Run(context.Background(), table, literal(t, "abcdefgh"), []int{2, 3}, opts(4))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.cells.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.cells.WithLabelValues("not-applicable")))
	assert.Equal(t, 8.0, testutil.ToFloat64(d.Metrics.trials.WithLabelValues("bf")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.trials.WithLabelValues("no")))

	spans := sr.Ended()
	require.Len(t, spans, 4)
	assert.Equal(t, "bench.cell", spans[0].Name())

	path := t.TempDir() + "/metrics.prom"
	require.NoError(t, d.Metrics.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "smart_trial_search_milliseconds")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveTrial("x", 1, loader.Timing{})
	m.CountTrial("x")
	m.ObserveCell(Result{})
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func TestWatchdog_LogsSlowCalls(t *testing.T) {
	var logs lockedBuffer
	d := NewDriver(&bytes.Buffer{}, false, pattern.NewGenerator(1),
		logging.New(logging.Config{Level: logging.LevelWarn, Output: &logs}))

	sleepy := func(p, t []byte, tm *loader.Timing) int {
		time.Sleep(30 * time.Millisecond)
		tm.SearchMs = 0.1
		return 1
	}
	o := Options{NumRuns: 1, TimeLimit: time.Millisecond, WatchdogFactor: 2}
	report, err := d.Run(context.Background(), loader.NewTable(loader.Static("sleepy", sleepy)), literal(t, "abcd"), []int{2}, o)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Results[0].Status, "watchdog must not alter the result")
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "watchdog")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "SLEEPY")
}

// =============================================================================
// Stats / formatting
// =============================================================================

func TestStats(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(xs)
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, PopulationStd(xs, mean), 1e-9)
	assert.Zero(t, Mean(nil))
	assert.Zero(t, PopulationStd(nil, 0))
}

func TestStatus_Tag(t *testing.T) {
	assert.Equal(t, "[OK]", StatusOK.Tag())
	assert.Equal(t, "[ERROR]", StatusError.Tag())
	assert.Equal(t, "[OUT]", StatusTimeout.Tag())
	assert.Equal(t, "[--]", StatusNotApplicable.Tag())
}

func TestFormatTiming(t *testing.T) {
	r := Result{MeanSearchMs: 1.234, StdSearchMs: 0.5, MeanPreprocessMs: 0.25}
	assert.True(t, strings.HasPrefix(FormatTiming(r, Options{}), "[1.23 ± 0.50] ms"))
	assert.True(t, strings.HasPrefix(FormatTiming(r, Options{PreSeparately: true}), "0.25 + [1.23 ± 0.50] ms"))
}

func TestProgress_TickOnlyOnTTY(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, false)
	p.StartCell(1, 1, "bf")
	p.Tick(1, 2)
	assert.NotContains(t, out.String(), "%")

	ux.SetPersonalityLevel(ux.PersonalityMinimal)
	defer ux.SetPersonalityLevel(ux.PersonalityMachine)
	out.Reset()
	p = NewProgress(&out, true)
	p.StartCell(1, 1, "bf")
	p.Tick(1, 2)
	assert.Contains(t, out.String(), "[ 50%]")
	p.FinishCell(Result{Status: StatusTimeout}, Options{})
	assert.True(t, strings.HasSuffix(out.String(), "[OUT]   \n"))
}

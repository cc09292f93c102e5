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
	"fmt"
	"time"

	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/cmd/smart/internal/selection"
	"github.com/AleutianAI/smart/cmd/smart/internal/verify"
	"github.com/AleutianAI/smart/pkg/ux"
	"github.com/spf13/cobra"
)

type testOptions struct {
	lengthFlags

	all      bool
	selected bool
	use      string
	seed     uint64
	quick    bool
	debug    bool
	failOnly bool
}

func newTestCmd(a *app) *cobra.Command {
	o := &testOptions{}
	testCmd := &cobra.Command{
		Use:   "test [algo regex...]",
		Short: "Check algorithms against a reference matcher",
		Long: `Check algorithms against a brute-force reference matcher.

Every algorithm runs a set of fixed edge cases and, for each pattern
length, randomized cases over alphabets of 2, 4, 16 and 256 symbols.
Lengths from --patt-len and --increment are tested on top of the default
1..32 doubling schedule. A negative return is reported as declined rather
than failed. The command exits with status 1 when any case fails.`,
		Example: `  smart test hor
  smart test --selected --quick
  smart test -all -fo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WrapExitError(a.runTests(cmd, args, o), "test")
		},
	}

	f := testCmd.Flags()
	f.BoolVar(&o.all, "all-algos", false, "Test every algorithm on the search paths")
	f.BoolVar(&o.selected, "selected", false, "Test the selected algorithms")
	f.StringVar(&o.use, "use-algos", "", "Test the saved algorithm list N")
	o.lengthFlags.register(testCmd, "test")
	f.Uint64Var(&o.seed, "rand-seed", 0, "Random seed (default: current time)")
	f.BoolVar(&o.quick, "quick", false, "Run a tenth of the randomized cases")
	f.BoolVar(&o.debug, "debug", false, "Re-run failing cases through a breakpoint-friendly call")
	f.BoolVar(&o.failOnly, "fail-only", false, "Only print failing cases")

	testCmd.MarkFlagsMutuallyExclusive("all-algos", "use-algos")
	return testCmd
}

func (a *app) runTests(cmd *cobra.Command, args []string, o *testOptions) error {
	ctx := cmd.Context()
	if !cmd.Flags().Changed("rand-seed") {
		o.seed = uint64(time.Now().UnixNano())
	}

	var lengths []int
	if o.lengthFlags.given() {
		sched, err := o.lengthFlags.apply(pattern.TestDefault)
		if err != nil {
			return err
		}
		lengths = verify.WithDefault(sched.Lengths(verify.TextLength))
	}

	set, err := a.selection().Resolve(ctx, selection.Source{
		Patterns: args,
		All:      o.all,
		Selected: o.selected,
		Named:    o.use,
	})
	if err != nil {
		return fmt.Errorf("resolve algorithms: %w", err)
	}
	if set.Len() == 0 {
		ux.Warning("No algorithms to test.")
		return nil
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
	a.logger.Info("starting correctness tests", "seed", gen.Seed(), "algorithms", set.Len())

	tester := verify.New(a.out, gen, a.logger)
	summary, err := tester.Test(ctx, table, verify.Options{
		Lengths:  lengths,
		Quick:    o.quick,
		Debug:    o.debug,
		FailOnly: o.failOnly,
	})
	if err != nil {
		return err
	}

	var failed []string
	for _, s := range summary.Algorithms {
		if s.Failed > 0 {
			failed = append(failed, s.Name.Canonical())
		}
	}
	if summary.Failed() {
		ux.Error(ux.List("Failing algorithms: ", failed))
		return NewExitError("test", ExitFailure, errTestsFailed)
	}
	ux.Success(fmt.Sprintf("%d algorithms passed (seed %d)", len(summary.Algorithms), gen.Seed()))
	return nil
}

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
	"io"
	"os"
	"os/signal"

	"github.com/AleutianAI/smart/cmd/smart/config"
	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
	"github.com/AleutianAI/smart/cmd/smart/internal/pattern"
	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/cmd/smart/internal/selection"
	"github.com/AleutianAI/smart/pkg/logging"
	"github.com/AleutianAI/smart/pkg/ux"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds the state shared by every subcommand: global flags, the loaded
// configuration, and the logger built from it.
type app struct {
	out    io.Writer
	errOut io.Writer

	// global flags
	configPath  string
	verbose     bool
	personality string

	cfg    config.SmartConfig
	logger *logging.Logger

	// opener replaces the platform plugin opener when set.
	opener loader.Opener
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, logger: logging.Nop()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smart",
		Short: "String Matching Algorithms Research Tool",
		Long: `smart benchmarks and verifies exact string matching algorithms.

Algorithms are shared libraries exporting internal_search, found on the
configured search paths. Use "smart select" to manage the default set,
"smart run" to benchmark it and "smart test" to check it against a
reference matcher.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to smart.yaml (default $SMART_CONFIG or ~/.smart/smart.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Log debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&a.personality, "personality", "",
		"Output style: full (default on a terminal), minimal, or machine (scripting)")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newTestCmd(a))
	rootCmd.AddCommand(newSelectCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	return rootCmd
}

// setup runs before every subcommand: personality, then configuration,
// then the logger configured by it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.personality != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(a.personality))
	} else {
		ux.InitPersonality()
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return NewExitError(cmd.Name(), ExitFailure, fmt.Errorf("load config: %w", err))
	}
	a.cfg = cfg

	level := logging.ParseLevel(cfg.Logging.Level)
	if a.verbose {
		level = logging.LevelDebug
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "smart",
		JSON:    cfg.Logging.JSON,
		Output:  a.errOut,
	})
	a.logger.Debug("configuration loaded",
		"config_dir", cfg.ConfigDir,
		"search_paths", cfg.AlgoSearchPaths,
		"data_dirs", cfg.DataDirs)
	return nil
}

func (a *app) loadConfig() (config.SmartConfig, error) {
	if a.configPath != "" {
		return config.LoadFrom(a.configPath)
	}
	if err := config.Load(); err != nil {
		return config.SmartConfig{}, err
	}
	return config.Global, nil
}

func (a *app) close() {
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(a.errOut, "close log file: %v\n", err)
	}
}

func (a *app) discover(ctx context.Context) ([]registry.Name, error) {
	return registry.Discover(ctx, a.cfg.AlgoSearchPaths, a.logger)
}

func (a *app) selection() *selection.Manager {
	return selection.New(registry.NewStore(a.cfg.ConfigDir), a.discover)
}

// tty reports whether command output goes to a terminal.
func (a *app) tty() bool {
	f, ok := a.out.(*os.File)
	return ok && ux.IsTerminal(f)
}

// defaultSchedule is the run schedule from the configuration file.
func (a *app) defaultSchedule() (pattern.Schedule, error) {
	d := a.cfg.Defaults
	op, err := pattern.ParseOp(d.IncrementOp)
	if err != nil {
		return pattern.Schedule{}, err
	}
	return pattern.Schedule{Min: d.MinLen, Max: d.MaxLen, Op: op, Step: d.Increment}, nil
}

// lengthFlags are the pattern-length flags shared by run and test.
type lengthFlags struct {
	plen []int
	inc  string
}

func (f *lengthFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().IntSliceVar(&f.plen, "patt-len", nil,
		"Minimum and maximum length L,U of the patterns to "+what+" (a single L fixes the length)")
	cmd.Flags().StringVar(&f.inc, "increment", "",
		"Pattern length increment as operator and value, e.g. +1 or *2")
}

func (f *lengthFlags) given() bool {
	return len(f.plen) > 0 || f.inc != ""
}

// apply overrides the bounds and increment of base with the flags.
func (f *lengthFlags) apply(base pattern.Schedule) (pattern.Schedule, error) {
	s := base
	switch len(f.plen) {
	case 0:
	case 1:
		s.Min, s.Max = f.plen[0], f.plen[0]
	case 2:
		s.Min, s.Max = f.plen[0], f.plen[1]
	default:
		return s, fmt.Errorf("%w: --patt-len takes L or L,U, got %d values", pattern.ErrInvalidSchedule, len(f.plen))
	}
	if f.inc != "" {
		op, step, err := pattern.ParseIncrement(f.inc, "")
		if err != nil {
			return s, err
		}
		s.Op, s.Step = op, step
	}
	return s, s.Validate()
}

// execute runs the CLI with args and returns the process exit status.
func execute(args []string, out, errOut io.Writer) int {
	return executeApp(newApp(out, errOut), args)
}

func executeApp(a *app, args []string) int {
	ux.Out = a.out
	defer a.close()

	// interrupts stop a run between cells
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(rewriteLegacyArgs(args))
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
	}
	return exitCode(err)
}

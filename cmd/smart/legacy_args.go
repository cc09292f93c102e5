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
	"strconv"
	"strings"
)

// Historical smart releases used single-dash multi-letter options with
// space separated values (`-plen 2 32`, `-inc + 2`, `-text a b`). pflag
// reads those as shorthand clusters, so they are rewritten to the long
// spellings before cobra sees them.

type legacyArity int

const (
	argsNone legacyArity = iota
	argsOne
	argsMany      // every following non-flag token
	argsLengths   // one or two integers, joined with a comma
	argsIncrement // an operator and a value, possibly as two tokens
)

type legacyFlag struct {
	long  string
	arity legacyArity
}

var legacyFlags = map[string]legacyFlag{
	"-h": {"help", argsNone},

	// run
	"-text":   {"text-files", argsMany},
	"-rand":   {"rand-text", argsOne},
	"-data":   {"data-to-search", argsOne},
	"-plen":   {"patt-len", argsLengths},
	"-inc":    {"increment", argsIncrement},
	"-short":  {"short-patterns", argsNone},
	"-vshort": {"very-short", argsNone},
	"-pat":    {"pattern", argsOne},
	"-use":    {"use-algos", argsOne},
	"-all":    {"all-algos", argsNone},
	"-runs":   {"num-runs", argsOne},
	"-ts":     {"text-size", argsOne},
	"-tb":     {"time-bound", argsOne},
	"-fb":     {"fill-buffer", argsNone},
	"-rs":     {"rand-seed", argsOne},
	"-pre":    {"pre-time", argsNone},
	"-occ":    {"occurrences", argsNone},
	"-pin":    {"pin-cpu", argsOne},
	"-cstats": {"cpu-stats", argsOne},

	// test
	"-sel": {"selected", argsNone},
	"-q":   {"quick", argsNone},
	"-d":   {"debug", argsNone},
	"-fo":  {"fail-only", argsNone},

	// select
	"-a":    {"add", argsNone},
	"-r":    {"remove", argsNone},
	"-n":    {"none", argsNone},
	"-sa":   {"show-all", argsNone},
	"-ss":   {"show-selected", argsNone},
	"-sn":   {"show-named", argsOne},
	"-ln":   {"list-named", argsNone},
	"-save": {"save-as", argsOne},
	"-set":  {"set-default", argsOne},
}

// rewriteLegacyArgs converts legacy single-dash options to long flags.
// Unknown tokens pass through untouched, as does everything after "--".
// A legacy option missing its value is emitted bare so cobra reports it.
func rewriteLegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		f, ok := legacyFlags[arg]
		if !ok {
			out = append(out, arg)
			continue
		}
		flag := "--" + f.long

		switch f.arity {
		case argsNone:
			out = append(out, flag)

		case argsOne:
			if i+1 >= len(args) {
				out = append(out, flag)
				continue
			}
			i++
			out = append(out, flag+"="+args[i])

		case argsMany:
			n := 0
			for i+1 < len(args) && !isFlagLike(args[i+1]) {
				i++
				n++
				out = append(out, flag+"="+args[i])
			}
			if n == 0 {
				out = append(out, flag)
			}

		case argsLengths:
			var vals []string
			for len(vals) < 2 && i+1 < len(args) && isInt(args[i+1]) {
				i++
				vals = append(vals, args[i])
			}
			if len(vals) == 0 {
				out = append(out, flag)
				continue
			}
			out = append(out, flag+"="+strings.Join(vals, ","))

		case argsIncrement:
			if i+1 >= len(args) {
				out = append(out, flag)
				continue
			}
			i++
			v := args[i]
			if isOperator(v) && i+1 < len(args) && isInt(args[i+1]) {
				i++
				v += args[i]
			}
			out = append(out, flag+"="+v)
		}
	}
	return out
}

func isFlagLike(s string) bool {
	return len(s) > 1 && s[0] == '-'
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isOperator(s string) bool {
	return s == "+" || s == "*" || s == "x"
}

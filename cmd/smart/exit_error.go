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
	"errors"
	"fmt"
)

// Exit codes returned by the smart binary.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// errTestsFailed is returned by `smart test` when any algorithm disagreed
// with the reference.
var errTestsFailed = errors.New("correctness tests failed")

// ExitError carries the process exit code for a failed command.
//
// # Description
//
// Subcommands return plain errors; the root maps them to an ExitError so
// main can choose the exit status in one place. Implements error and
// supports unwrapping, so errors.Is against package sentinels (e.g.
// registry.ErrCapacity) still works through it.
//
// # Example
//
//	err := NewExitError("run", ExitFailure, loadErr)
//	fmt.Println(err.Error()) // "run (exit 1): load algorithms: ..."
//
//	var exitErr *ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
type ExitError struct {
	// Command is the subcommand that failed.
	Command string

	// Code is the process exit status.
	Code int

	// Wrapped is the underlying error.
	Wrapped error
}

// Error returns a formatted error message.
func (e *ExitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.Code, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Wrapped
}

// NewExitError creates an ExitError.
//
// # Inputs
//
//   - command: Subcommand name for context (e.g., "select")
//   - code: Exit status
//   - wrapped: Underlying error (may be nil)
//
// # Outputs
//
//   - *ExitError: New error with full context
func NewExitError(command string, code int, wrapped error) *ExitError {
	return &ExitError{Command: command, Code: code, Wrapped: wrapped}
}

// WrapExitError wraps err into an ExitError with ExitFailure if it isn't
// one already.
//
// # Description
//
// If the error already is (or wraps) an *ExitError, that error is
// returned as-is so the innermost code wins. A nil error stays a nil
// error interface, so RunE can return the result directly.
func WrapExitError(err error, command string) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return NewExitError(command, ExitFailure, err)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

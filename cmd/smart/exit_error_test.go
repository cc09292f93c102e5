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
	"testing"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	err := NewExitError("run", ExitFailure, errors.New("boom"))
	assert.Equal(t, "run (exit 1): boom", err.Error())

	bare := NewExitError("test", ExitFailure, nil)
	assert.Equal(t, "test (exit 1)", bare.Error())
}

func TestWrapExitError(t *testing.T) {
	assert.NoError(t, WrapExitError(nil, "run"))

	wrapped := WrapExitError(fmt.Errorf("merge: %w", registry.ErrCapacity), "select")
	var exitErr *ExitError
	require.ErrorAs(t, wrapped, &exitErr)
	assert.Equal(t, "select", exitErr.Command)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.ErrorIs(t, wrapped, registry.ErrCapacity)

	inner := NewExitError("test", 3, errTestsFailed)
	again := WrapExitError(fmt.Errorf("outer: %w", inner), "run")
	require.ErrorAs(t, again, &exitErr)
	assert.Equal(t, 3, exitErr.Code, "innermost code wins")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil))
	assert.Equal(t, ExitFailure, exitCode(errors.New("plain")))
	assert.Equal(t, 7, exitCode(fmt.Errorf("wrapped: %w", NewExitError("x", 7, nil))))
}

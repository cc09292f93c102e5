// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel controls how much decoration the CLI output carries.
type PersonalityLevel string

const (
	// PersonalityFull enables colors, icons, boxes and the live percentage ticker
	PersonalityFull PersonalityLevel = "full"

	// PersonalityMinimal keeps icons and the ticker but drops colors
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain text suitable for scripting and parsing
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalityEnv overrides the detected level.
const PersonalityEnv = "SMART_PERSONALITY"

var (
	currentLevel  = PersonalityFull
	personalityMu sync.RWMutex
)

// GetPersonality returns the current output level.
func GetPersonality() PersonalityLevel {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentLevel
}

// SetPersonalityLevel sets the output level.
func SetPersonalityLevel(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentLevel = level
}

// ParsePersonalityLevel converts a string into a level, defaulting to full.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(s) {
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q", "plain":
		return PersonalityMachine
	default:
		return PersonalityFull
	}
}

// InitPersonality picks a level from the environment, falling back to
// machine output when stdout is not a terminal.
func InitPersonality() {
	if envLevel := os.Getenv(PersonalityEnv); envLevel != "" {
		SetPersonalityLevel(ParsePersonalityLevel(envLevel))
		return
	}
	if !IsTerminal(os.Stdout) {
		SetPersonalityLevel(PersonalityMachine)
		return
	}
	SetPersonalityLevel(PersonalityFull)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShouldShowProgress reports whether in-place progress tickers may be drawn.
func ShouldShowProgress() bool {
	return GetPersonality() != PersonalityMachine
}

// ShouldShowColors reports whether lipgloss styling should be applied.
func ShouldShowColors() bool {
	return GetPersonality() == PersonalityFull
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output helpers for the smart CLI: a small
// lipgloss palette, personality levels, benchmark status tags and the
// multi-column algorithm listing.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#7F8C8D")
)

// Styles holds the shared lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon is a single-glyph status marker.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconBullet  Icon = "•"
)

// Render returns the icon with its semantic color, or the bare glyph when
// colors are off.
func (i Icon) Render() string {
	if !ShouldShowColors() {
		return string(i)
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Out is where the helpers below print. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

func render(style lipgloss.Style, text string) string {
	if !ShouldShowColors() {
		return text
	}
	return style.Render(text)
}

// Title prints a bold heading; suppressed in machine mode.
func Title(text string) {
	if GetPersonality() == PersonalityMachine {
		return
	}
	fmt.Fprintln(Out, render(Styles.Title, text))
}

// Success prints a success line.
func Success(text string) {
	if GetPersonality() == PersonalityMachine {
		fmt.Fprintf(Out, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(Out, "%s %s\n", IconSuccess.Render(), render(Styles.Success, text))
}

// Warning prints a warning line. Machine mode sends it to stderr.
func Warning(text string) {
	if GetPersonality() == PersonalityMachine {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(Out, "%s %s\n", IconWarning.Render(), render(Styles.Warning, text))
}

// Error prints an error line. Machine mode sends it to stderr.
func Error(text string) {
	if GetPersonality() == PersonalityMachine {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(Out, "%s %s\n", IconError.Render(), render(Styles.Error, text))
}

// Info prints an informational line.
func Info(text string) {
	if GetPersonality() == PersonalityMachine {
		fmt.Fprintln(Out, text)
		return
	}
	fmt.Fprintf(Out, "%s %s\n", render(Styles.Muted, "│"), text)
}

// Box prints content in a rounded box.
func Box(title, content string) {
	if GetPersonality() != PersonalityFull {
		fmt.Fprintf(Out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(Out, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}

// =============================================================================
// Benchmark status tags
// =============================================================================

// StatusTag renders one of the benchmark cell tags ([OK], [ERROR], [OUT],
// [--]) with a color matching its meaning.
func StatusTag(tag string) string {
	if !ShouldShowColors() {
		return tag
	}
	switch tag {
	case "[OK]", "[PASS]":
		return Styles.Success.Render(tag)
	case "[ERROR]", "[FAIL]":
		return Styles.Error.Render(tag)
	case "[OUT]":
		return Styles.Warning.Render(tag)
	default:
		return Styles.Muted.Render(tag)
	}
}

// =============================================================================
// Algorithm name listings
// =============================================================================

// AlgoColumns is the number of names per row in tabular listings.
const AlgoColumns = 6

const algoColumnWidth = 18

// Columns lays out names upper-cased in rows of cols entries, each padded to
// a fixed column width.
func Columns(names []string, cols int) string {
	if cols <= 0 {
		cols = AlgoColumns
	}
	var b strings.Builder
	for i, n := range names {
		fmt.Fprintf(&b, "%-*s ", algoColumnWidth, strings.ToUpper(n))
		if (i+1)%cols == 0 || i == len(names)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// List renders names as "message A, B, C." with upper-case names. An empty
// list renders as the empty string.
func List(message string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	upper := make([]string, len(names))
	for i, n := range names {
		upper[i] = strings.ToUpper(n)
	}
	return message + strings.Join(upper, ", ") + "."
}

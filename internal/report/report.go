// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report writes the user-facing one-line diagnostics of the ris
// command: a red "error" prefix for fatal conditions and green success
// messages. Colour is used only when the writer is a terminal.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Reporter formats diagnostics for one output stream.
type Reporter struct {
	w       io.Writer
	errTag  lipgloss.Style
	success lipgloss.Style
}

// New returns a Reporter writing to w. Colour is enabled when w is a
// terminal file and NO_COLOR is unset.
func New(w io.Writer) *Reporter {
	return NewWithColor(w, colorEnabled(w))
}

// NewWithColor returns a Reporter with colour forced on or off.
func NewWithColor(w io.Writer, color bool) *Reporter {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return &Reporter{
		w:       w,
		errTag:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
		success: renderer.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Error writes "error: <err>" on one line.
func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.w, "%s: %v\n", r.errTag.Render("error"), err)
}

// Success writes msg in green.
func (r *Reporter) Success(format string, args ...any) {
	fmt.Fprintln(r.w, r.success.Render(fmt.Sprintf(format, args...)))
}

// Plain writes an uncoloured line.
func (r *Reporter) Plain(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

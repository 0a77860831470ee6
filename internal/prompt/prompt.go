// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prompt asks the user for values the installer still needs
// after flags, environment and the config file have been applied.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts an interactive prompt.
var ErrAborted = errors.New("aborted by user")

// Prompter asks a question and returns the answer, or def when the
// answer is empty.
type Prompter interface {
	Ask(question, def string) (string, error)
}

// New returns a terminal prompter when in is a terminal and a line
// prompter otherwise.
func New(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return &Terminal{in: in, out: out}
	}
	return NewLine(in, out)
}

// Line reads answers one line at a time. It is used when stdin is a
// pipe or file.
type Line struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLine returns a Line prompter reading from in.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{r: bufio.NewReader(in), out: out}
}

// Ask writes "question (def): " and reads one line. End of input counts
// as an empty answer.
func (l *Line) Ask(question, def string) (string, error) {
	fmt.Fprintf(l.out, "%s (%s): ", question, def)
	line, err := l.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return orDefault(strings.TrimSpace(line), def), nil
}

// Terminal prompts on an interactive terminal with a coloured question
// and line editing.
type Terminal struct {
	in  *os.File
	out io.Writer
}

// Ask puts the terminal in raw mode for the duration of one question.
func (t *Terminal) Ask(question, def string) (string, error) {
	fd := int(t.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return NewLine(t.in, t.out).Ask(question, def)
	}
	defer term.Restore(fd, oldState)

	return readAnswer(struct {
		io.Reader
		io.Writer
	}{t.in, t.out}, question, def)
}

// readAnswer reads one edited line from rw. The terminal reports Ctrl-C
// and Ctrl-D on an empty line as io.EOF; both abort instead of taking
// the default.
func readAnswer(rw io.ReadWriter, question, def string) (string, error) {
	tm := term.NewTerminal(rw, "")
	tm.SetPrompt(string(tm.Escape.Cyan) + fmt.Sprintf("%s (%s): ", question, def) + string(tm.Escape.Reset))
	line, err := tm.ReadLine()
	if errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	if err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return orDefault(strings.TrimSpace(line), def), nil
}

// Static answers from a fixed map keyed by question, falling back to the
// default. It is used for non-interactive runs.
type Static map[string]string

// Ask returns the stored answer for question or def.
func (s Static) Ask(question, def string) (string, error) {
	return orDefault(s[question], def), nil
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

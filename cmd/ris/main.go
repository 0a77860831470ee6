// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command ris installs the Rois compiler and standard library into a
// project folder and generates its Makefile.
//
//	ris download <path> [--keep-compiler]
//	ris init <path> [--no-download] [--keep-compiler]
package main

import (
	"context"
	"os"

	"github.com/iqbigbang/ris/internal/prompt"
	"github.com/iqbigbang/ris/internal/report"
)

// Exit codes. Every fatal condition maps to exitFailure.
const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	a := &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		prompter: prompt.New(os.Stdin, os.Stdout),
		reporter: report.New(os.Stdout),
	}
	os.Exit(run(context.Background(), a, os.Args[1:], report.New(os.Stderr)))
}

// run executes the command tree and is the single place where errors
// become a diagnostic and an exit code.
func run(ctx context.Context, a *app, args []string, errs *report.Reporter) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		errs.Error(err)
		return exitFailure
	}
	return exitSuccess
}

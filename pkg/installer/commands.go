// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Binary names.
const (
	binGit    = "git"
	binDotnet = "dotnet"
	binAr     = "ar"
)

// orDefault returns val if non-empty, otherwise fallback.
func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

// Command describes one external tool invocation.
type Command struct {
	// Dir is the working directory. Empty means the process CWD.
	Dir string

	Name string
	Args []string

	// Stream forwards the tool's output to the runner's writers while it
	// runs. Stdout is captured either way.
	Stream bool
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external tools. ExecRunner is the production
// implementation; tests substitute a fake that simulates tool effects.
type Runner interface {
	Run(ctx context.Context, c Command) (string, error)
}

// ExecRunner runs commands with os/exec. Stdout and Stderr receive the
// output of streamed commands; nil writers discard it.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger
}

// Run executes c and returns its stdout. Stderr is captured separately
// and included in the error on failure.
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("exec", zap.String("cmd", c.Name), zap.Strings("args", c.Args), zap.String("dir", c.Dir))

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stream {
		if r.Stdout != nil {
			cmd.Stdout = io.MultiWriter(r.Stdout, &stdout)
		}
		if r.Stderr != nil {
			cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
		}
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.String(), fmt.Errorf("%s: %w (stderr: %s)", c, err, msg)
		}
		return stdout.String(), fmt.Errorf("%s: %w", c, err)
	}
	return stdout.String(), nil
}

// Git helpers.

func cmdGit(git, dir string, arg ...string) Command {
	return Command{Name: git, Dir: dir, Args: arg}
}

func gitClone(git, dir, repo, branch, dest string) Command {
	c := cmdGit(git, dir, "clone", "-b", branch, repo, dest)
	c.Stream = true
	return c
}

func gitRevParseHEAD(git, dir string) Command {
	return cmdGit(git, dir, "rev-parse", "HEAD")
}

// Dotnet helpers.

func dotnetBuildRelease(dotnet, dir, project, outDir string) Command {
	return Command{
		Name:   dotnet,
		Dir:    dir,
		Args:   []string{"build", project, "-c", "Release", "-o", outDir},
		Stream: true,
	}
}

// C toolchain helpers.

func ccCompile(cc, dir string, cflags []string, unit, object string) Command {
	args := append(append([]string{}, cflags...), unit, "-o", object)
	return Command{Name: cc, Dir: dir, Args: args, Stream: true}
}

func arCreate(ar, dir, archive string, objects []string) Command {
	args := append([]string{"rc", archive}, objects...)
	return Command{Name: ar, Dir: dir, Args: args, Stream: true}
}

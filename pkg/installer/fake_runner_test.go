// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fakeRunner records every command and simulates the side effects of
// git, dotnet, the C compiler and the archiver on the filesystem.
type fakeRunner struct {
	t     *testing.T
	calls []Command

	// missing tools fail their --version probe.
	missing map[string]bool

	// stdlib maps file names to contents created by "git clone" in
	// <dest>/stdlib.
	stdlib map[string]string

	revision    string
	failClone   bool
	failRev     bool
	failDotnet  bool
	failUnits   map[string]bool
	failArchive bool
}

func newFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	return &fakeRunner{
		t:        t,
		missing:  map[string]bool{},
		stdlib:   map[string]string{"a.c": "int a;", "b.c": "int b;", "iface.roi": "extern def a()"},
		revision: "0123456789abcdef0123456789abcdef01234567\n",
	}
}

var errExit1 = errors.New("exit status 1")

func (f *fakeRunner) Run(_ context.Context, c Command) (string, error) {
	f.calls = append(f.calls, c)
	if len(c.Args) == 1 && c.Args[0] == "--version" {
		if f.missing[c.Name] {
			return "", errors.New("executable file not found in $PATH")
		}
		return c.Name + " 1.0\n", nil
	}

	switch {
	case c.Name == binGit && c.Args[0] == "clone":
		if f.failClone {
			return "", errExit1
		}
		dest := filepath.Join(c.Dir, c.Args[len(c.Args)-1])
		dir := filepath.Join(dest, "stdlib")
		f.mkdir(dir)
		f.write(filepath.Join(dest, "RoisLang.csproj"), "<Project/>")
		for name, content := range f.stdlib {
			f.write(filepath.Join(dir, name), content)
		}
		return "", nil

	case c.Name == binGit && c.Args[0] == "rev-parse":
		if f.failRev {
			return "", errExit1
		}
		return f.revision, nil

	case c.Name == binDotnet:
		if f.failDotnet {
			return "", errExit1
		}
		out := c.Args[len(c.Args)-1]
		f.mkdir(out)
		f.write(filepath.Join(out, defaultCompilerExe()), "compiler")
		return "", nil

	case c.Name == binAr:
		if f.failArchive {
			return "", errExit1
		}
		archive := c.Args[1]
		var members []string
		for _, obj := range c.Args[2:] {
			data, err := os.ReadFile(filepath.Join(c.Dir, obj))
			if err != nil {
				return "", err
			}
			members = append(members, obj+"="+string(data))
		}
		f.write(archive, strings.Join(members, "\n"))
		return "", nil

	default:
		// Any other tool is treated as the C compiler:
		// <cc> <cflags...> <unit> -o <object>
		n := len(c.Args)
		if n < 3 || c.Args[n-2] != "-o" {
			f.t.Fatalf("unexpected command %s", c)
		}
		unit, obj := c.Args[n-3], c.Args[n-1]
		if f.failUnits[unit] {
			return "", errExit1
		}
		f.write(filepath.Join(c.Dir, obj), "obj("+unit+")")
		return "", nil
	}
}

func (f *fakeRunner) mkdir(dir string) {
	f.t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fakeRunner) write(path, content string) {
	f.t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatal(err)
	}
}

// ran reports whether any recorded command used tool with first
// argument arg0.
func (f *fakeRunner) ran(tool, arg0 string) bool {
	return slices.ContainsFunc(f.calls, func(c Command) bool {
		return c.Name == tool && len(c.Args) > 0 && c.Args[0] == arg0
	})
}

// toolCalls returns the commands that used tool, excluding probes.
func (f *fakeRunner) toolCalls(tool string) []Command {
	var out []Command
	for _, c := range f.calls {
		if c.Name == tool && !(len(c.Args) == 1 && c.Args[0] == "--version") {
			out = append(out, c)
		}
	}
	return out
}

// testConfig returns a Config rooted in a fresh temp dir with cc set.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Root = t.TempDir()
	cfg.Stdlib.CC = "gcc"
	return cfg
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

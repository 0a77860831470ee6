// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqbigbang/ris/internal/prompt"
	"github.com/iqbigbang/ris/internal/report"
)

type testApp struct {
	*app
	stdout, stderr bytes.Buffer
}

func newTestApp(answers prompt.Static) *testApp {
	ta := &testApp{}
	ta.app = &app{
		stdout:   &ta.stdout,
		stderr:   &ta.stderr,
		prompter: answers,
		reporter: report.NewWithColor(&ta.stdout, false),
	}
	return ta
}

func (ta *testApp) run(args ...string) int {
	return run(context.Background(), ta.app, args, report.NewWithColor(&ta.stderr, false))
}

func TestInit_NoDownloadWritesMakefile(t *testing.T) {
	dir := t.TempDir()
	ta := newTestApp(prompt.Static{askOut: "hello"})

	code := ta.run("init", dir, "--no-download", "--main", "src/hello.ro")
	require.Equal(t, exitSuccess, code, "stderr: %s", ta.stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "Makefile"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "CC=gcc\nMAIN=src/hello.ro\nOUTNAME=hello\n"), "Makefile:\n%s", data)
	assert.Contains(t, ta.stdout.String(), "Initialization finished")
	assert.NoDirExists(t, filepath.Join(dir, ".ris"))
}

func TestInit_CompilerFromEnvironment(t *testing.T) {
	t.Setenv("RIS_CC", "clang")
	dir := t.TempDir()
	ta := newTestApp(nil)

	require.Equal(t, exitSuccess, ta.run("init", dir, "--no-download"), "stderr: %s", ta.stderr.String())
	data, err := os.ReadFile(filepath.Join(dir, "Makefile"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "CC=clang\n"))
}

func TestInit_CompilerFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "stdlib:\n  cc: tcc\nproject:\n  output_name: demo\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ris.yaml"), []byte(cfg), 0o644))
	ta := newTestApp(nil)

	require.Equal(t, exitSuccess, ta.run("init", dir, "--no-download"), "stderr: %s", ta.stderr.String())
	data, err := os.ReadFile(filepath.Join(dir, "Makefile"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CC=tcc\n")
	assert.Contains(t, string(data), "OUTNAME=demo\n")
}

func TestInit_InvalidAnswer(t *testing.T) {
	dir := t.TempDir()
	ta := newTestApp(prompt.Static{askMain: "main.ro; rm -rf /"})

	assert.Equal(t, exitFailure, ta.run("init", dir, "--no-download"))
	assert.True(t, strings.HasPrefix(ta.stderr.String(), "error: "))
	assert.NoFileExists(t, filepath.Join(dir, "Makefile"))
}

func TestInit_InvalidAnswerBeforeDownload(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	dir := t.TempDir()
	ta := newTestApp(prompt.Static{askMain: "my file.ro"})

	assert.Equal(t, exitFailure, ta.run("init", dir, "--cc", "gcc"))
	assert.Contains(t, ta.stderr.String(), "main file name")
	assert.NotContains(t, ta.stderr.String(), "failed to find")
	assert.NoDirExists(t, filepath.Join(dir, ".ris"))
	assert.NoFileExists(t, filepath.Join(dir, "Makefile"))
}

func TestDownload_AlreadyInitialized(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".ris"), 0o755))
	ta := newTestApp(nil)

	assert.Equal(t, exitFailure, ta.run("download", dir, "--cc", "gcc"))
	assert.Equal(t, "error: ris is already initialized in this folder\n", ta.stderr.String())
}

func TestDownload_MissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	dir := t.TempDir()
	ta := newTestApp(nil)

	assert.Equal(t, exitFailure, ta.run("download", dir, "--cc", "gcc"))
	assert.True(t, strings.HasPrefix(ta.stderr.String(), "error: failed to find `git`"), ta.stderr.String())
	assert.NoDirExists(t, filepath.Join(dir, ".ris"))
}

func TestRun_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"download"},
		{"init", "a", "b"},
		{"frobnicate"},
	} {
		ta := newTestApp(nil)
		assert.Equal(t, exitFailure, ta.run(args...), "args %v", args)
		assert.True(t, strings.HasPrefix(ta.stderr.String(), "error: "), "args %v: %q", args, ta.stderr.String())
	}
}

// fakeTools are shell stand-ins for the external tools, installed ahead
// of the real ones on PATH.
var fakeTools = map[string]string{
	"git": `#!/bin/sh
case "$1" in
--version) echo "git version 2.0" ;;
clone)
	mkdir -p "$5/stdlib"
	echo 'int a;' > "$5/stdlib/a.c"
	echo 'int b;' > "$5/stdlib/b.c"
	echo 'extern def a()' > "$5/stdlib/io.ro"
	;;
rev-parse) echo 0123456789abcdef0123456789abcdef01234567 ;;
*) exit 1 ;;
esac
`,
	"dotnet": `#!/bin/sh
[ "$1" = --version ] && exit 0
for a; do out=$a; done
mkdir -p "$out"
echo compiler > "$out/RoisLang"
`,
	"gcc": `#!/bin/sh
[ "$1" = --version ] && exit 0
for a; do obj=$a; done
echo object > "$obj"
`,
	"ar": `#!/bin/sh
[ "$1" = --version ] && exit 0
echo archive > "$2"
`,
}

func installFakeTools(t *testing.T) {
	t.Helper()
	bin := t.TempDir()
	for name, script := range fakeTools {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestInit_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	installFakeTools(t)
	dir := filepath.Join(t.TempDir(), "proj")
	ta := newTestApp(nil)

	code := ta.run("init", dir, "--cc", "gcc")
	require.Equal(t, exitSuccess, code, "stderr: %s", ta.stderr.String())

	assert.FileExists(t, filepath.Join(dir, ".ris", "bin", "RoisLang"))
	assert.FileExists(t, filepath.Join(dir, ".ris", "std", "libstdrois.a"))
	assert.FileExists(t, filepath.Join(dir, ".ris", "gitversion.txt"))
	assert.FileExists(t, filepath.Join(dir, ".ris", "manifest.yaml"))
	assert.FileExists(t, filepath.Join(dir, "io.ro"))
	assert.FileExists(t, filepath.Join(dir, "Makefile"))
	assert.NoDirExists(t, filepath.Join(dir, ".ris", "rois"))

	out := ta.stdout.String()
	assert.Contains(t, out, "Rois compiler successfully installed")
	assert.Contains(t, out, "Initialization finished")
	assert.Less(t, strings.Index(out, "successfully installed"), strings.Index(out, "Initialization finished"))

	ta = newTestApp(nil)
	assert.Equal(t, exitFailure, ta.run("download", dir, "--cc", "gcc"), "second bootstrap must be rejected")
}

func TestDownload_KeepCompiler(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	installFakeTools(t)
	dir := t.TempDir()
	ta := newTestApp(nil)

	require.Equal(t, exitSuccess, ta.run("download", dir, "--keep-compiler", "--cc", "gcc"), "stderr: %s", ta.stderr.String())
	assert.DirExists(t, filepath.Join(dir, ".ris", "rois"))
	assert.NoFileExists(t, filepath.Join(dir, "Makefile"))
}

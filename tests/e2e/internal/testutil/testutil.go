//go:build e2e

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package testutil provides shared helpers for the ris end-to-end tests.
// It lives under internal/ so only test packages within tests/e2e/ can
// import it.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// RoisBranch is the branch the local fixture repository publishes.
const RoisBranch = "c-backend"

// FindModuleRoot returns the absolute path of the ris module root using
// `go env GOMOD`, independent of the working directory depth.
func FindModuleRoot() (string, error) {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		return "", fmt.Errorf("go env GOMOD: %w", err)
	}
	gomod := strings.TrimSpace(string(out))
	if gomod == "" || gomod == os.DevNull {
		return "", fmt.Errorf("go env GOMOD returned empty or /dev/null; not inside a Go module")
	}
	return filepath.Dir(gomod), nil
}

// BuildRis compiles cmd/ris into dir and returns the binary path.
func BuildRis(dir string) (string, error) {
	root, err := FindModuleRoot()
	if err != nil {
		return "", err
	}
	bin := filepath.Join(dir, "ris")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/ris")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w\n%s", err, out)
	}
	return bin, nil
}

// RequireTools skips the test unless every named tool is on PATH.
func RequireTools(t testing.TB, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not on PATH", tool)
		}
	}
}

// RunRis runs the ris binary with stdin from input and returns combined
// stdout+stderr. Output is also streamed to os.Stderr, each line tagged
// with the test name.
func RunRis(t testing.TB, bin, input string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Stdin = strings.NewReader(input)

	var buf bytes.Buffer
	pw := &prefixWriter{tag: "[" + t.Name() + "] ", w: os.Stderr}
	cmd.Stdout = io.MultiWriter(pw, &buf)
	cmd.Stderr = io.MultiWriter(pw, &buf)

	err := cmd.Run()
	return buf.String(), err
}

// ExitCode returns the process exit code carried by err, 0 for nil and
// -1 when err is not an exit error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}

// prefixWriter inserts a tag at the start of each line.
type prefixWriter struct {
	tag string
	w   io.Writer
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		var line []byte
		if idx < 0 {
			line, p = p, nil
		} else {
			line, p = p[:idx+1], p[idx+1:]
		}
		if _, err := io.WriteString(pw.w, pw.tag); err != nil {
			return n, err
		}
		if _, err := pw.w.Write(line); err != nil {
			return n, err
		}
	}
	return n, nil
}

// StdlibFixture is the standard library published by SetupRoisRepo.
var StdlibFixture = map[string]string{
	"io.c":     "int rois_print(const char *s) { return s != 0; }\n",
	"string.c": "int rois_strlen(const char *s) { int n = 0; while (s[n]) n++; return n; }\n",
	"io.ro":    "extern def print(s: str) -> i32\n",
	"std.roi":  "extern def strlen(s: str) -> i32\n",
}

// SetupRoisRepo creates a local git repository shaped like the Rois
// compiler source on RoisBranch and returns its path and HEAD revision.
func SetupRoisRepo(t testing.TB) (string, string) {
	t.Helper()
	repo := filepath.Join(t.TempDir(), "rois")
	if err := os.MkdirAll(filepath.Join(repo, "stdlib"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"RoisLang.csproj": "<Project Sdk=\"Microsoft.NET.Sdk\"/>\n"}
	for name, content := range StdlibFixture {
		files[filepath.Join("stdlib", name)] = content
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(repo, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, args := range [][]string{
		{"git", "init", "-q"},
		{"git", "checkout", "-q", "-b", RoisBranch},
		{"git", "add", "-A"},
		{"git", "-c", "user.email=e2e@test.local", "-c", "user.name=E2E Test",
			"-c", "commit.gpgsign=false", "commit", "-q", "-m", "Initial compiler"},
	} {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = repo
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("SetupRoisRepo: git %v: %v\n%s", args[1:], err, out)
		}
	}
	return repo, GitHead(t, repo)
}

// GitHead returns the full SHA of HEAD in dir.
func GitHead(t testing.TB, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("GitHead: %v", err)
	}
	return strings.TrimSpace(string(out))
}

// FakeDotnet writes a dotnet stand-in that answers --version and, for
// "build ... -o <dir>", creates the compiler executable in <dir>.
func FakeDotnet(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dotnet")
	script := `#!/bin/sh
[ "$1" = --version ] && { echo 8.0.100; exit 0; }
for a; do out=$a; done
mkdir -p "$out"
printf '#!/bin/sh\necho RoisLang\n' > "$out/RoisLang"
chmod +x "$out/RoisLang"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteConfig writes a ris.yaml into dir pointing at repo and dotnet.
func WriteConfig(t testing.TB, dir, repo, dotnet string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf("toolchain:\n  repository: %s\n  branch: %s\ntools:\n  dotnet: %s\n", repo, RoisBranch, dotnet)
	if err := os.WriteFile(filepath.Join(dir, "ris.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

// FileExists returns true if the path relative to dir exists on disk.
func FileExists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(dir, rel))
	return err == nil
}

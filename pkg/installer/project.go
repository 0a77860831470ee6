// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

//go:embed templates/Makefile.tmpl
var makefileTemplate string

var buildFileTmpl = template.Must(template.New("Makefile").Option("missingkey=error").Parse(makefileTemplate))

// ProjectOptions are the user-supplied inputs to project initialization.
// Empty token fields take their documented defaults.
type ProjectOptions struct {
	// CC is the compiler command written to the build file (default "gcc").
	CC string

	// MainFile is the entry source file (default "main.ro").
	MainFile string

	// OutputName is the produced executable (default "program").
	OutputName string

	// Download runs the bootstrap pipeline before writing the build file.
	Download bool
}

func (o ProjectOptions) withDefaults() ProjectOptions {
	o.CC = orDefault(o.CC, DefaultCC)
	o.MainFile = orDefault(o.MainFile, DefaultMainFile)
	o.OutputName = orDefault(o.OutputName, DefaultOutputName)
	return o
}

// InitResult describes a finished project initialization.
type InitResult struct {
	// Bootstrap is nil when the download was skipped.
	Bootstrap *Result
	BuildFile string
}

// ProjectInitializer optionally bootstraps the toolchain, then writes the
// build-configuration file in the project root.
type ProjectInitializer struct {
	cfg    Config
	runner Runner
	log    *zap.Logger

	// OnTransition is forwarded to the bootstrap pipeline.
	OnTransition func(Stage)
}

// NewProjectInitializer returns a ProjectInitializer for cfg.
func NewProjectInitializer(cfg Config, runner Runner, log *zap.Logger) *ProjectInitializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectInitializer{cfg: cfg, runner: runner, log: log}
}

// Init runs the bootstrap when opts.Download is set, then renders the
// build file. Tokens are validated before any external tool runs.
func (pi *ProjectInitializer) Init(ctx context.Context, opts ProjectOptions) (InitResult, error) {
	opts = opts.withDefaults()
	if err := validateTokens(opts); err != nil {
		return InitResult{}, err
	}

	var res InitResult
	if opts.Download {
		cfg := pi.cfg
		cfg.Stdlib.CC = opts.CC
		p := NewPipeline(cfg, pi.runner, pi.log)
		p.OnTransition = pi.OnTransition
		boot, err := p.Run(ctx)
		if err != nil {
			return res, err
		}
		res.Bootstrap = &boot
	}

	content, err := pi.RenderBuildFile(opts)
	if err != nil {
		return res, err
	}
	path := filepath.Join(pi.cfg.Root, pi.cfg.Project.BuildFile)
	pi.log.Info("writing build file", zap.String("path", path))
	if err := os.MkdirAll(pi.cfg.Root, 0o755); err != nil {
		return res, fmt.Errorf("creating %s: %w", pi.cfg.Root, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	res.BuildFile = path
	return res, nil
}

// buildFileData is the data passed to the build file template.
type buildFileData struct {
	CC          string
	Main        string
	OutName     string
	Staging     string
	Archive     string
	CompilerExe string
	CFlags      string
}

// RenderBuildFile returns the build-configuration file for opts. Empty
// tokens are replaced with defaults.
func (pi *ProjectInitializer) RenderBuildFile(opts ProjectOptions) ([]byte, error) {
	opts = opts.withDefaults()
	if err := validateTokens(opts); err != nil {
		return nil, err
	}
	data := buildFileData{
		CC:          opts.CC,
		Main:        opts.MainFile,
		OutName:     opts.OutputName,
		Staging:     filepath.ToSlash(pi.cfg.Staging.Dir),
		Archive:     pi.cfg.Stdlib.ArchiveName,
		CompilerExe: pi.cfg.Toolchain.CompilerExe,
		CFlags:      strings.Join(pi.cfg.Stdlib.CFlags, " "),
	}
	var buf bytes.Buffer
	if err := buildFileTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering build file: %w", err)
	}
	return buf.Bytes(), nil
}

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._+/-]+$`)

// ValidateToken reports whether s can be embedded verbatim in the build
// file: non-empty, filesystem-safe characters only, no leading dash and
// no ".." path element.
func ValidateToken(field, s string) error {
	switch {
	case s == "":
		return stageErrorf(ErrInvalidToken, nil, "%s is empty", field)
	case !tokenPattern.MatchString(s):
		return stageErrorf(ErrInvalidToken, nil, "%s %q contains characters outside [A-Za-z0-9._+/-]", field, s)
	case strings.HasPrefix(s, "-"):
		return stageErrorf(ErrInvalidToken, nil, "%s %q starts with '-'", field, s)
	}
	for _, part := range strings.Split(s, "/") {
		if part == ".." {
			return stageErrorf(ErrInvalidToken, nil, "%s %q contains a '..' element", field, s)
		}
	}
	return nil
}

func validateTokens(opts ProjectOptions) error {
	for _, tok := range []struct{ field, value string }{
		{"compiler command", opts.CC},
		{"main file name", opts.MainFile},
		{"output name", opts.OutputName},
	} {
		if err := ValidateToken(tok.field, tok.value); err != nil {
			return err
		}
	}
	return nil
}

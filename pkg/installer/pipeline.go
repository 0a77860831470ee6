// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Stage is a bootstrap pipeline state. The pipeline moves strictly
// forward through the stages in declaration order.
type Stage int

const (
	StageUninitialized Stage = iota
	StageToolsChecked
	StageSourceFetched
	StageCompilerBuilt
	StageStdlibBuilt
	StageFinalized
)

var stageNames = [...]string{
	StageUninitialized: "uninitialized",
	StageToolsChecked:  "tools-checked",
	StageSourceFetched: "source-fetched",
	StageCompilerBuilt: "compiler-built",
	StageStdlibBuilt:   "stdlib-built",
	StageFinalized:     "finalized",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Result describes a completed bootstrap.
type Result struct {
	Root       string
	StagingDir string
	Marker     Marker
	Compiler   string
	Library    Library

	// Stages lists every state the pipeline entered, in order.
	Stages []Stage

	// Manifest is the manifest path, or "" when it could not be written.
	Manifest string
}

// Pipeline takes a project directory from uninitialized to ready to build
// user programs. It is single-use and not safe for concurrent use; the
// staging directory check is a guard, not a lock.
type Pipeline struct {
	cfg    Config
	runner Runner
	log    *zap.Logger
	now    func() time.Time

	// OnTransition, when set, is called after every state change.
	OnTransition func(Stage)

	stage  Stage
	stages []Stage
}

// NewPipeline returns a pipeline in StageUninitialized.
func NewPipeline(cfg Config, runner Runner, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, runner: runner, log: log, now: time.Now}
}

// Stage returns the state the pipeline has reached.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// Stages returns every state entered so far, starting with
// StageUninitialized once Run has been called.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

func (p *Pipeline) advance(s Stage) {
	p.stage = s
	p.stages = append(p.stages, s)
	p.log.Info("stage", zap.Stringer("state", s))
	if p.OnTransition != nil {
		p.OnTransition(s)
	}
}

// Run executes the whole bootstrap. On error the pipeline stops where it
// is and leaves the staging directory as far as it progressed; the user
// retries by deleting the staging directory.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	root, err := filepath.Abs(p.cfg.Root)
	if err != nil {
		return Result{}, stageErrorf(ErrStaging, err, "resolving %s", p.cfg.Root)
	}
	p.cfg.Root = root
	staging := p.cfg.StagingPath()
	res := Result{Root: root, StagingDir: staging}
	p.stages = []Stage{p.stage}

	// Uninitialized: the staging directory must not exist.
	if _, err := os.Lstat(staging); err == nil {
		return res, stageErrorf(ErrAlreadyInitialized, nil, "ris is already initialized in this folder")
	} else if !os.IsNotExist(err) {
		return res, stageErrorf(ErrStaging, err, "checking %s", staging)
	}

	cc := p.cfg.ResolveCC()
	probe := NewToolProbe(p.runner, p.log)
	if err := probe.ProbeAll(ctx, p.cfg.Tools.Git, p.cfg.Tools.Dotnet, cc, p.cfg.Stdlib.Archiver); err != nil {
		return res, err
	}
	p.advance(StageToolsChecked)

	if err := p.createStaging(root, staging); err != nil {
		return res, err
	}

	fetcher := NewSourceFetcher(p.cfg, p.runner, p.log)
	res.Marker, err = fetcher.Fetch(ctx, staging, p.cfg.Toolchain.Repository, p.cfg.Toolchain.Branch)
	if err != nil {
		return res, err
	}
	p.advance(StageSourceFetched)

	source := p.cfg.SourcePath()
	builder := NewCompilerBuilder(p.cfg, p.runner, p.log)
	res.Compiler, err = builder.Build(ctx, source, filepath.Join(staging, "bin"))
	if err != nil {
		return res, err
	}
	p.advance(StageCompilerBuilt)

	stdlib := NewStdlibBuilder(p.cfg, p.runner, p.log)
	res.Library, err = stdlib.Build(ctx, staging, p.cfg.StdlibPath(), cc)
	if err != nil {
		return res, err
	}
	p.advance(StageStdlibBuilt)

	res.Manifest = p.finalize(&res, cc, source)
	p.advance(StageFinalized)

	res.Stages = p.stages
	return res, nil
}

// createStaging creates the staging directory and its persistent
// subdirectories. Mkdir on the staging directory itself fails if another
// run created it after the guard check.
func (p *Pipeline) createStaging(root, staging string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return stageErrorf(ErrStaging, err, "creating %s", root)
	}
	if err := os.Mkdir(staging, 0o755); err != nil {
		if os.IsExist(err) {
			return stageErrorf(ErrAlreadyInitialized, nil, "ris is already initialized in this folder")
		}
		return stageErrorf(ErrStaging, err, "creating %s", staging)
	}
	for _, sub := range []string{"bin", "obj", "std"} {
		if err := os.MkdirAll(filepath.Join(staging, sub), 0o755); err != nil {
			return stageErrorf(ErrStaging, err, "creating %s", sub)
		}
	}
	return nil
}

// finalize removes the source tree unless it is kept and records the
// manifest. Both steps are best-effort: a leftover source tree or a
// missing manifest does not make the install incorrect.
func (p *Pipeline) finalize(res *Result, cc, source string) string {
	if !p.cfg.Staging.KeepSources {
		p.log.Info("removing sources", zap.String("dir", source))
		if err := os.RemoveAll(source); err != nil {
			p.log.Warn("removing sources failed", zap.Error(err))
		}
	}

	m := &Manifest{
		Repository:  p.cfg.Toolchain.Repository,
		Branch:      p.cfg.Toolchain.Branch,
		Revision:    string(res.Marker),
		CC:          cc,
		Compiler:    res.Compiler,
		Archive:     res.Library.Archive,
		Objects:     res.Library.Objects,
		Interfaces:  res.Library.Interfaces,
		KeptSources: p.cfg.Staging.KeepSources,
		InstalledAt: p.now().UTC().Format(time.RFC3339),
	}
	if sum, size, err := hashFile(res.Library.Archive); err != nil {
		p.log.Warn("hashing archive failed", zap.Error(err))
	} else {
		m.ArchiveHash, m.ArchiveSize = sum, size
		p.log.Info("archive ready",
			zap.String("path", res.Library.Archive),
			zap.String("size", humanize.Bytes(uint64(size))))
	}

	path := filepath.Join(res.StagingDir, p.cfg.Staging.ManifestFile)
	if err := writeManifest(path, m); err != nil {
		p.log.Warn("writing manifest failed", zap.Error(err))
		return ""
	}
	return path
}

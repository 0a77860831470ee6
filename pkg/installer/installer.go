// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package installer bootstraps the Rois compiler and its C standard
// library into a project directory and generates the Makefile that
// builds user programs against them.
//
// The bootstrap is a linear, fail-fast pipeline: probe the external
// tools, clone the compiler source, build the compiler, build and archive
// the standard library, then finalize. Every failure is returned as a
// *StageError whose kind is one of the Err* sentinels; nothing in this
// package reads from stdin or exits the process.
package installer

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// Installer ties a Config to the runner and logger used by the bootstrap
// pipeline and project initializer.
type Installer struct {
	cfg    Config
	runner Runner
	log    *zap.Logger

	// OnTransition, when set, observes pipeline state changes.
	OnTransition func(Stage)
}

// Option configures an Installer.
type Option func(*Installer)

// WithRunner replaces the default ExecRunner.
func WithRunner(r Runner) Option {
	return func(i *Installer) { i.runner = r }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(log *zap.Logger) Option {
	return func(i *Installer) { i.log = log }
}

// New returns an Installer for cfg. Zero-valued fields of cfg take their
// defaults.
func New(cfg Config, opts ...Option) *Installer {
	cfg.applyDefaults()
	i := &Installer{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	if i.runner == nil {
		i.runner = &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Log: i.log}
	}
	return i
}

// Config returns the resolved configuration.
func (i *Installer) Config() Config {
	return i.cfg
}

// Logger returns the installer's logger.
func (i *Installer) Logger() *zap.Logger {
	return i.log
}

// Download runs only the bootstrap pipeline.
func (i *Installer) Download(ctx context.Context) (Result, error) {
	i.logConfig("download")
	p := NewPipeline(i.cfg, i.runner, i.log)
	p.OnTransition = i.OnTransition
	return p.Run(ctx)
}

// Init optionally bootstraps, then writes the build-configuration file.
func (i *Installer) Init(ctx context.Context, opts ProjectOptions) (InitResult, error) {
	i.logConfig("init")
	pi := NewProjectInitializer(i.cfg, i.runner, i.log)
	pi.OnTransition = i.OnTransition
	return pi.Init(ctx, opts)
}

// logConfig prints the resolved configuration for debugging.
func (i *Installer) logConfig(target string) {
	i.log.Debug("config",
		zap.String("target", target),
		zap.String("root", i.cfg.Root),
		zap.String("staging", i.cfg.Staging.Dir),
		zap.String("repo", i.cfg.Toolchain.Repository),
		zap.String("branch", i.cfg.Toolchain.Branch),
		zap.String("cc", i.cfg.ResolveCC()),
		zap.Bool("keep_sources", i.cfg.Staging.KeepSources))
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iqbigbang/ris/internal/logger"
	"github.com/iqbigbang/ris/internal/prompt"
	"github.com/iqbigbang/ris/internal/report"
	"github.com/iqbigbang/ris/pkg/installer"
)

// Prompt questions.
const (
	askCC   = "Enter C compiler name"
	askMain = "Enter main file name"
	askOut  = "Enter output executable file name"
)

// app carries the process-level dependencies of the command tree so
// tests can run it without a terminal or real tools.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	prompter prompt.Prompter
	reporter *report.Reporter

	// runner overrides the installer's ExecRunner when non-nil.
	runner installer.Runner
}

var commonOpts = []opt{
	{flag: "keep-compiler", dflt: false, desc: "don't delete the compiler sources"},
	{flag: "cc", dflt: "", desc: "C compiler command (asked for when unset)"},
	{flag: "config", dflt: "", desc: "configuration file (default <path>/" + installer.DefaultConfigFile + ")"},
	{flag: "verbose", short: "v", dflt: false, desc: "log every external command"},
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ris",
		Short:         "Rois installation system",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.AddCommand(newDownloadCmd(a), newInitCmd(a))
	return root
}

func newDownloadCmd(a *app) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "download and build the Rois compiler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.newInstaller(v, args[0])
			if err != nil {
				return err
			}
			return a.download(cmd.Context(), inst)
		},
	}
	bindOptions(cmd.Flags(), v, commonOpts)
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "download and initialize Rois in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.newInstaller(v, args[0])
			if err != nil {
				return err
			}
			// Resolve and check every answer before the download.
			cfg := inst.Config()
			opts := installer.ProjectOptions{
				CC:         cfg.ResolveCC(),
				MainFile:   firstNonEmpty(v.GetString("main"), cfg.Project.MainFile),
				OutputName: firstNonEmpty(v.GetString("out"), cfg.Project.OutputName),
			}
			if opts.MainFile == "" {
				if opts.MainFile, err = a.prompter.Ask(askMain, installer.DefaultMainFile); err != nil {
					return err
				}
			}
			if err := installer.ValidateToken("main file name", opts.MainFile); err != nil {
				return err
			}
			if opts.OutputName == "" {
				if opts.OutputName, err = a.prompter.Ask(askOut, installer.DefaultOutputName); err != nil {
					return err
				}
			}
			if err := installer.ValidateToken("output name", opts.OutputName); err != nil {
				return err
			}
			if !v.GetBool("no-download") {
				if err := a.download(cmd.Context(), inst); err != nil {
					return err
				}
			}
			res, err := inst.Init(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.reporter.Plain("wrote %s", res.BuildFile)
			a.reporter.Success("Initialization finished")
			return nil
		},
	}
	bindOptions(cmd.Flags(), v, append([]opt{
		{flag: "no-download", dflt: false, desc: "don't download the compiler"},
		{flag: "main", dflt: "", desc: "entry source file (asked for when unset)"},
		{flag: "out", dflt: "", desc: "output executable name (asked for when unset)"},
	}, commonOpts...))
	return cmd
}

// newInstaller loads the configuration for path and layers flag and
// environment values over it.
func (a *app) newInstaller(v *viper.Viper, path string) (*installer.Installer, error) {
	cfgPath := v.GetString("config")
	var cfg installer.Config
	var err error
	if cfgPath != "" {
		cfg, err = installer.LoadConfig(cfgPath)
	} else {
		cfg, err = installer.LoadConfigIfPresent(filepath.Join(path, installer.DefaultConfigFile))
	}
	if err != nil {
		return nil, err
	}

	cfg.Root, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if cc := v.GetString("cc"); cc != "" {
		cfg.Stdlib.CC = cc
	}
	if v.GetBool("keep-compiler") {
		cfg.Staging.KeepSources = true
	}

	// Ask for the C compiler only when no flag, environment variable or
	// config entry named one, and reject unusable commands before any
	// tool runs.
	if cfg.Stdlib.CC == "" {
		if cfg.Stdlib.CC, err = a.prompter.Ask(askCC, installer.DefaultCC); err != nil {
			return nil, err
		}
	}
	if err := installer.ValidateToken("compiler command", cfg.Stdlib.CC); err != nil {
		return nil, err
	}

	log := logger.New(a.stderr, logger.Level(v.GetBool("verbose")))
	opts := []installer.Option{installer.WithLogger(log)}
	if a.runner != nil {
		opts = append(opts, installer.WithRunner(a.runner))
	} else {
		opts = append(opts, installer.WithRunner(&installer.ExecRunner{Stdout: a.stdout, Stderr: a.stderr, Log: log}))
	}
	return installer.New(cfg, opts...), nil
}

func (a *app) download(ctx context.Context, inst *installer.Installer) error {
	res, err := inst.Download(ctx)
	if err != nil {
		return err
	}
	inst.Logger().Debug("bootstrap complete", zap.Stringers("stages", res.Stages))
	if m, err := installer.LoadManifest(res.Manifest); err == nil && m.ArchiveSize > 0 {
		a.reporter.Plain("revision %s, %s (%s)", res.Marker, filepath.Base(res.Library.Archive),
			humanize.Bytes(uint64(m.ArchiveSize)))
	}
	a.reporter.Success("Rois compiler successfully installed")
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Library is the result of a standard library build.
type Library struct {
	// Archive is the absolute path of the static library.
	Archive string

	// Objects are the object file names, in archive order.
	Objects []string

	// Interfaces are the interface-description files now in the
	// project root.
	Interfaces []string
}

// StdlibBuilder compiles the C standard library, archives it and moves
// the interface-description files to the project root.
type StdlibBuilder struct {
	runner        Runner
	log           *zap.Logger
	archiver      string
	unitExt       string
	interfaceExts []string
	cflags        []string
	archiveName   string
}

// NewStdlibBuilder returns a StdlibBuilder configured from cfg.
func NewStdlibBuilder(cfg Config, runner Runner, log *zap.Logger) *StdlibBuilder {
	return &StdlibBuilder{
		runner:        runner,
		log:           log,
		archiver:      cfg.Stdlib.Archiver,
		unitExt:       cfg.Stdlib.UnitExt,
		interfaceExts: cfg.Stdlib.InterfaceExts,
		cflags:        cfg.Stdlib.CFlags,
		archiveName:   cfg.Stdlib.ArchiveName,
	}
}

// Build compiles every unit in stdlibSourceDir with cc, archives the
// objects into <stagingDir>/std and relocates interface files to the
// directory above stagingDir. A single failed unit fails the whole build;
// a partial standard library is never usable.
func (b *StdlibBuilder) Build(ctx context.Context, stagingDir, stdlibSourceDir, cc string) (Library, error) {
	stagingDir, err := filepath.Abs(stagingDir)
	if err != nil {
		return Library{}, stageErrorf(ErrStaging, err, "resolving %s", stagingDir)
	}

	units, err := listByExt(stdlibSourceDir, b.unitExt)
	if err != nil {
		return Library{}, stageErrorf(ErrStdlibCompileFailure, err, "failed to list the standard library")
	}
	if len(units) == 0 {
		return Library{}, stageErrorf(ErrStdlibCompileFailure, nil,
			"no %s units in %s", b.unitExt, stdlibSourceDir)
	}

	lib := Library{Archive: filepath.Join(stagingDir, "std", b.archiveName)}
	for i, unit := range units {
		obj := objectName(i + 1)
		c := ccCompile(cc, stdlibSourceDir, b.cflags, unit, obj)
		b.log.Info("compile", zap.String("cmd", c.String()))
		if _, err := b.runner.Run(ctx, c); err != nil {
			return Library{}, &StageError{
				Kind: ErrStdlibCompileFailure,
				Tool: cc,
				Msg:  fmt.Sprintf("failed to build standard library unit %s", unit),
				Err:  err,
			}
		}
		lib.Objects = append(lib.Objects, obj)
	}

	if err := os.MkdirAll(filepath.Dir(lib.Archive), 0o755); err != nil {
		return Library{}, stageErrorf(ErrArchiveFailure, err, "creating %s", filepath.Dir(lib.Archive))
	}
	c := arCreate(b.archiver, stdlibSourceDir, lib.Archive, lib.Objects)
	b.log.Info("archive", zap.String("cmd", c.String()))
	if _, err := b.runner.Run(ctx, c); err != nil {
		return Library{}, &StageError{
			Kind: ErrArchiveFailure,
			Tool: b.archiver,
			Msg:  "failed to build standard library archive",
			Err:  err,
		}
	}

	lib.Interfaces, err = b.relocateInterfaces(stdlibSourceDir, filepath.Dir(stagingDir))
	if err != nil {
		return Library{}, err
	}
	return lib, nil
}

// relocateInterfaces moves interface files from src into root, keeping
// their base names. Every file is attempted; any failure fails the stage
// so a partially moved set never passes as complete.
func (b *StdlibBuilder) relocateInterfaces(src, root string) ([]string, error) {
	var names []string
	for _, ext := range b.interfaceExts {
		found, err := listByExt(src, ext)
		if err != nil {
			return nil, stageErrorf(ErrRelocateFailure, err, "listing %s files", ext)
		}
		names = append(names, found...)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	var moved []string
	var errs error
	for _, name := range names {
		dst := filepath.Join(root, name)
		if err := moveFile(filepath.Join(src, name), dst); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("moving %s: %w", name, err))
			continue
		}
		b.log.Debug("relocated", zap.String("file", name), zap.String("to", root))
		moved = append(moved, name)
	}
	if errs != nil {
		return nil, stageErrorf(ErrRelocateFailure, errs, "failed to relocate interface files")
	}
	return moved, nil
}

// objectName returns the object file name for the n-th unit (1-based).
func objectName(n int) string {
	return strconv.Itoa(n) + ".o"
}

// listByExt returns the names of regular files in dir ending in ext,
// sorted by name so object numbering does not depend on the
// filesystem's listing order.
func listByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// moveFile renames src to dst. When a rename is impossible (for example
// across filesystems) it copies and then removes src.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if _, statErr := os.Stat(src); statErr != nil {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errors.Join(err, os.Remove(dst))
	}
	return nil
}

// copyFile copies src to dst, creating parent directories as needed.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
)

// CompilerBuilder builds the fetched compiler with its own build driver.
type CompilerBuilder struct {
	runner      Runner
	log         *zap.Logger
	dotnet      string
	projectFile string
	exe         string
}

// NewCompilerBuilder returns a CompilerBuilder configured from cfg.
func NewCompilerBuilder(cfg Config, runner Runner, log *zap.Logger) *CompilerBuilder {
	return &CompilerBuilder{
		runner:      runner,
		log:         log,
		dotnet:      cfg.Tools.Dotnet,
		projectFile: cfg.Toolchain.ProjectFile,
		exe:         cfg.Toolchain.CompilerExe,
	}
}

// Build runs a release build of sourceTree with its artifacts written to
// outputDir and returns the compiler executable path. A broken upstream
// tree will not build on a second attempt, so failures are final.
func (b *CompilerBuilder) Build(ctx context.Context, sourceTree, outputDir string) (string, error) {
	b.log.Info("building compiler", zap.String("project", b.projectFile), zap.String("out", outputDir))
	if _, err := b.runner.Run(ctx, dotnetBuildRelease(b.dotnet, sourceTree, b.projectFile, outputDir)); err != nil {
		return "", stageErrorf(ErrCompilerBuildFailure, err, "failed to build RoisLang")
	}
	return filepath.Join(outputDir, b.exe), nil
}

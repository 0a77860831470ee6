// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Marker is the provenance marker: the upstream revision that was
// bootstrapped. It is recorded for traceability and never validated.
type Marker string

// SourceFetcher clones the compiler source into the staging directory and
// records its provenance.
type SourceFetcher struct {
	runner     Runner
	log        *zap.Logger
	git        string
	sourceDir  string
	markerFile string
}

// NewSourceFetcher returns a SourceFetcher using the tool names and
// layout from cfg.
func NewSourceFetcher(cfg Config, runner Runner, log *zap.Logger) *SourceFetcher {
	return &SourceFetcher{
		runner:     runner,
		log:        log,
		git:        cfg.Tools.Git,
		sourceDir:  cfg.Toolchain.SourceDir,
		markerFile: cfg.Staging.MarkerFile,
	}
}

// Fetch clones branch of repositoryURL into stagingDir, then writes the
// cloned tree's HEAD revision to the marker file. Network and auth
// failures are not retried.
func (f *SourceFetcher) Fetch(ctx context.Context, stagingDir, repositoryURL, branch string) (Marker, error) {
	f.log.Info("cloning", zap.String("repo", repositoryURL), zap.String("branch", branch))
	if _, err := f.runner.Run(ctx, gitClone(f.git, stagingDir, repositoryURL, branch, f.sourceDir)); err != nil {
		return "", stageErrorf(ErrFetchFailure, err, "failed to clone the `%s` repo", f.sourceDir)
	}

	tree := filepath.Join(stagingDir, f.sourceDir)
	out, err := f.runner.Run(ctx, gitRevParseHEAD(f.git, tree))
	if err != nil {
		return "", stageErrorf(ErrFetchFailure, err, "failed to read the revision of %s", tree)
	}
	rev := Marker(strings.TrimSpace(out))
	if rev == "" {
		return "", stageErrorf(ErrFetchFailure, nil, "empty revision for %s", tree)
	}

	path := filepath.Join(stagingDir, f.markerFile)
	if err := writeMarker(path, rev); err != nil {
		return "", stageErrorf(ErrFetchFailure, err, "failed to record revision")
	}
	f.log.Info("fetched", zap.String("revision", string(rev)))
	return rev, nil
}

// writeMarker creates path exclusively so a marker is written at most
// once; an existing marker is never overwritten.
func writeMarker(path string, rev Marker) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	_, werr := fh.WriteString(string(rev))
	return errors.Join(werr, fh.Close())
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"context"

	"go.uber.org/zap"
)

// ToolProbe verifies that external executables can be invoked.
type ToolProbe struct {
	runner Runner
	log    *zap.Logger
}

// NewToolProbe returns a ToolProbe that runs probes through runner.
func NewToolProbe(runner Runner, log *zap.Logger) *ToolProbe {
	return &ToolProbe{runner: runner, log: log}
}

// Probe runs "<executable> --version". A launch failure or non-zero exit
// yields an ErrMissingTool error naming the executable. Missing tools are
// not transient, so there is no retry.
func (p *ToolProbe) Probe(ctx context.Context, executable string) error {
	p.log.Debug("probe", zap.String("tool", executable))
	if _, err := p.runner.Run(ctx, Command{Name: executable, Args: []string{"--version"}}); err != nil {
		return missingTool(executable, err)
	}
	return nil
}

// ProbeAll probes each executable in order and stops at the first one
// that is unavailable.
func (p *ToolProbe) ProbeAll(ctx context.Context, executables ...string) error {
	for _, exe := range executables {
		if err := p.Probe(ctx, exe); err != nil {
			return err
		}
	}
	return nil
}

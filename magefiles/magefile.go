//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Build targets for ris. Run "mage -l" in the repository root to list
// them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/iqbigbang/ris/pkg/installer"
)

const (
	binaryDir   = "bin"
	binaryName  = "ris"
	mainPackage = "./cmd/ris"
)

// Default target to run when none is specified.
var Default = Build

// Build compiles the ris binary into bin/.
func Build() error {
	outPath := filepath.Join(binaryDir, binaryName)
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := sh.RunV("go", "build", "-o", outPath, mainPackage); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	return nil
}

// Lint runs golangci-lint on the project.
func Lint() error {
	if err := sh.RunV("golangci-lint", "run", "./..."); err != nil {
		return fmt.Errorf("golangci-lint: %w", err)
	}
	return nil
}

// Test groups the test targets.
type Test mg.Namespace

// Unit runs go test on all packages.
func (Test) Unit() error {
	if err := sh.RunV("go", "test", "./..."); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// All runs vet and the unit tests.
func (Test) All() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return fmt.Errorf("go vet: %w", err)
	}
	mg.Deps(Test.Unit)
	return nil
}

// Install runs go install for the ris command.
func Install() error {
	if err := sh.RunV("go", "install", mainPackage); err != nil {
		return fmt.Errorf("go install: %w", err)
	}
	return nil
}

// Clean removes the build artifact directory.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return fmt.Errorf("removing %s: %w", binaryDir, err)
	}
	return nil
}

// Makefile prints the build file ris would generate for dir with default
// answers, without downloading anything.
func Makefile(dir string) error {
	cfg, err := installer.LoadConfigIfPresent(filepath.Join(dir, installer.DefaultConfigFile))
	if err != nil {
		return err
	}
	cfg.Root = dir
	content, err := installer.NewProjectInitializer(cfg, nil, nil).RenderBuildFile(installer.ProjectOptions{})
	if err != nil {
		return err
	}
	fmt.Print(string(content))
	return nil
}

// Bootstrap runs the full download into dir with the default C compiler,
// keeping the compiler sources.
func Bootstrap(dir string) error {
	cfg, err := installer.LoadConfigIfPresent(filepath.Join(dir, installer.DefaultConfigFile))
	if err != nil {
		return err
	}
	cfg.Root = dir
	cfg.Staging.KeepSources = true
	res, err := installer.New(cfg).Download(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("bootstrapped %s at revision %s\n", res.Root, res.Marker)
	return nil
}

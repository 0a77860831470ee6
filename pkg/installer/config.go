// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// project root when no explicit path is given.
const DefaultConfigFile = "ris.yaml"

// Config holds all installer settings. Callers either construct a Config
// in Go code (usually starting from DefaultConfig) or load one from a
// YAML file with LoadConfig.
type Config struct {
	// Root is the project directory being initialized. It is not read
	// from YAML; the CLI sets it from the positional path argument.
	Root string `yaml:"-"`

	Toolchain ToolchainConfig `yaml:"toolchain"`
	Staging   StagingConfig   `yaml:"staging"`
	Stdlib    StdlibConfig    `yaml:"stdlib"`
	Tools     ToolsConfig     `yaml:"tools"`
	Project   ProjectConfig   `yaml:"project"`
}

// ToolchainConfig describes where the compiler source comes from and how
// it is laid out.
type ToolchainConfig struct {
	// Repository is the clone URL of the compiler repository.
	Repository string `yaml:"repository"`

	// Branch is the branch cloned (default "c-backend").
	Branch string `yaml:"branch"`

	// SourceDir is the name of the cloned tree inside the staging
	// directory (default "rois").
	SourceDir string `yaml:"source_dir"`

	// ProjectFile is the build driver's project file inside the source
	// tree (default "RoisLang.csproj").
	ProjectFile string `yaml:"project_file"`

	// StdlibDir is the standard library directory relative to the
	// source tree (default "stdlib").
	StdlibDir string `yaml:"stdlib_dir"`

	// CompilerExe is the executable name produced by the build driver.
	CompilerExe string `yaml:"compiler_exe"`
}

// StagingConfig controls the staging directory owned by the pipeline.
type StagingConfig struct {
	// Dir is the staging directory name inside Root (default ".ris").
	Dir string `yaml:"dir"`

	// KeepSources retains the cloned source tree after a successful run.
	KeepSources bool `yaml:"keep_sources"`

	// MarkerFile holds the provenance marker (default "gitversion.txt").
	MarkerFile string `yaml:"marker_file"`

	// ManifestFile records the finished install (default "manifest.yaml").
	ManifestFile string `yaml:"manifest_file"`
}

// StdlibConfig controls how the C standard library is compiled.
type StdlibConfig struct {
	// CC is the C compiler command. Empty means "not yet known"; the CLI
	// asks for it and ResolveCC falls back to "gcc".
	CC string `yaml:"cc"`

	// Archiver is the static library tool (default "ar").
	Archiver string `yaml:"archiver"`

	// UnitExt selects compilable units (default ".c").
	UnitExt string `yaml:"unit_ext"`

	// InterfaceExts select interface-description files relocated to the
	// project root (default [".ro", ".roi"]).
	InterfaceExts []string `yaml:"interface_exts"`

	// CFlags are passed to the C compiler for every unit
	// (default ["-g", "-O1", "-c"]).
	CFlags []string `yaml:"cflags"`

	// ArchiveName is the library file created in <staging>/std
	// (default "libstdrois.a").
	ArchiveName string `yaml:"archive_name"`
}

// ToolsConfig names the external executables other than the C toolchain.
type ToolsConfig struct {
	Git    string `yaml:"git"`
	Dotnet string `yaml:"dotnet"`
}

// ProjectConfig holds the build-configuration tokens. Empty values are
// replaced with defaults by ProjectOptions.withDefaults.
type ProjectConfig struct {
	MainFile   string `yaml:"main_file"`
	OutputName string `yaml:"output_name"`

	// BuildFile is the generated build-configuration file name
	// (default "Makefile").
	BuildFile string `yaml:"build_file"`
}

// Default token values used when the user supplies an empty string.
const (
	DefaultCC         = "gcc"
	DefaultMainFile   = "main.ro"
	DefaultOutputName = "program"
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	c.Toolchain.Repository = orDefault(c.Toolchain.Repository, "https://github.com/IQBigBang/rois.git")
	c.Toolchain.Branch = orDefault(c.Toolchain.Branch, "c-backend")
	c.Toolchain.SourceDir = orDefault(c.Toolchain.SourceDir, "rois")
	c.Toolchain.ProjectFile = orDefault(c.Toolchain.ProjectFile, "RoisLang.csproj")
	c.Toolchain.StdlibDir = orDefault(c.Toolchain.StdlibDir, "stdlib")
	c.Toolchain.CompilerExe = orDefault(c.Toolchain.CompilerExe, defaultCompilerExe())

	c.Staging.Dir = orDefault(c.Staging.Dir, ".ris")
	c.Staging.MarkerFile = orDefault(c.Staging.MarkerFile, "gitversion.txt")
	c.Staging.ManifestFile = orDefault(c.Staging.ManifestFile, "manifest.yaml")

	c.Stdlib.Archiver = orDefault(c.Stdlib.Archiver, binAr)
	c.Stdlib.UnitExt = orDefault(c.Stdlib.UnitExt, ".c")
	if len(c.Stdlib.InterfaceExts) == 0 {
		c.Stdlib.InterfaceExts = []string{".ro", ".roi"}
	}
	if len(c.Stdlib.CFlags) == 0 {
		c.Stdlib.CFlags = []string{"-g", "-O1", "-c"}
	}
	c.Stdlib.ArchiveName = orDefault(c.Stdlib.ArchiveName, "libstdrois.a")

	c.Tools.Git = orDefault(c.Tools.Git, binGit)
	c.Tools.Dotnet = orDefault(c.Tools.Dotnet, binDotnet)

	c.Project.BuildFile = orDefault(c.Project.BuildFile, "Makefile")
}

// defaultCompilerExe returns the apphost name the .NET SDK produces for
// the compiler project on the current platform.
func defaultCompilerExe() string {
	if runtime.GOOS == "windows" {
		return "RoisLang.exe"
	}
	return "RoisLang"
}

// ResolveCC returns the configured C compiler or DefaultCC.
func (c *Config) ResolveCC() string {
	return orDefault(c.Stdlib.CC, DefaultCC)
}

// StagingPath returns the absolute-or-relative path of the staging
// directory under Root.
func (c *Config) StagingPath() string {
	return filepath.Join(c.Root, c.Staging.Dir)
}

// SourcePath returns the path of the cloned compiler tree.
func (c *Config) SourcePath() string {
	return filepath.Join(c.StagingPath(), c.Toolchain.SourceDir)
}

// StdlibPath returns the standard library directory inside the cloned tree.
func (c *Config) StdlibPath() string {
	return filepath.Join(c.SourcePath(), c.Toolchain.StdlibDir)
}

// LoadConfig reads a configuration YAML file and returns a Config with
// defaults applied to every field the file leaves empty.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfigIfPresent loads path when it exists and returns
// DefaultConfig otherwise. Any other read or parse error is returned.
func LoadConfigIfPresent(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

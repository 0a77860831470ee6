// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Manifest records a finished install in the staging directory. It is
// informational: nothing in the installer reads it back to make
// decisions.
type Manifest struct {
	Repository  string   `yaml:"repository"`
	Branch      string   `yaml:"branch"`
	Revision    string   `yaml:"revision"`
	CC          string   `yaml:"cc"`
	Compiler    string   `yaml:"compiler"`
	Archive     string   `yaml:"archive"`
	ArchiveHash string   `yaml:"archive_blake3,omitempty"`
	ArchiveSize int64    `yaml:"archive_size,omitempty"`
	Objects     []string `yaml:"objects"`
	Interfaces  []string `yaml:"interfaces,omitempty"`
	KeptSources bool     `yaml:"kept_sources"`
	InstalledAt string   `yaml:"installed_at"`
}

// hashFile returns the hex BLAKE3 digest and size of path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// writeManifest marshals m as YAML and writes it to path.
func writeManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	header := "# Written by ris after a successful bootstrap.\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// LoadManifest reads the manifest written by a previous bootstrap.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// projectConfig is the shape of a project's pawnls.yaml, grounded on
// SPEC_FULL.md's AMBIENT STACK §Configuration: source roots and
// entry-point hints for the default disk loader.
type projectConfig struct {
	SourceRoots []string `yaml:"source_roots"`
	EntryPoints []string `yaml:"entry_points"`
}

const configFileName = "pawnls.yaml"

// loadProjectConfig reads dir/pawnls.yaml if present, defaulting to a single
// source root at dir when absent or when source_roots is empty.
func loadProjectConfig(dir string) (*projectConfig, error) {
	cfg := &projectConfig{}
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.SourceRoots = []string{dir}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{dir}
	}
	for i, root := range cfg.SourceRoots {
		if !filepath.IsAbs(root) {
			cfg.SourceRoots[i] = filepath.Join(dir, root)
		}
	}
	return cfg, nil
}

// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package genome

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"genforge.dev/x/forge/pkg/schema"
	"github.com/goccy/go-yaml"
)

var ErrInvalidGenome = fmt.Errorf("invalid genome")

const (
	GenomeKind          = "Genome"
	GenomeSchemaVersion = "v1"
	GenomeAPIVersion    = schema.APIGroup + "/" + GenomeSchemaVersion

	LayoutMonorepo      = "monorepo"
	LayoutSinglePackage = "single-package"
)

// Genome is the declarative project specification. It is read once per
// resolution run and never mutated.
type Genome struct {
	schema.ManifestMeta `yaml:",inline"`

	Workspace    Workspace                  `yaml:"workspace"`
	Marketplaces map[string]*MarketplaceRef `yaml:"marketplaces"`
	Packages     map[string]*PackageConfig  `yaml:"packages"`
	Apps         map[string]*App            `yaml:"apps,omitempty"`
	Overrides    *Overrides                 `yaml:"overrides,omitempty"`

	AbsolutePath string `yaml:"-"`
}

type Workspace struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Layout is "monorepo" or "single-package"; defaults to single-package
	// unless apps are declared.
	Layout string `yaml:"layout,omitempty"`
	// PackageDirs maps already-known workspace package names to their paths.
	PackageDirs map[string]string `yaml:"packageDirs,omitempty"`
}

// MarketplaceRef names a content source. Source is a local directory path,
// a git URL, or an oci:// reference.
type MarketplaceRef struct {
	Source string `yaml:"source"`
}

type PackageConfig struct {
	Marketplace string            `yaml:"marketplace"`
	Provider    string            `yaml:"provider,omitempty"`
	Parameters  map[string]string `yaml:"parameters,omitempty"`

	// Optional genome-declared placement for modules expanded from this package.
	TargetPackage *string  `yaml:"targetPackage,omitempty"`
	TargetApps    []string `yaml:"targetApps,omitempty"`
}

type App struct {
	Framework    string   `yaml:"framework"`
	Path         string   `yaml:"path"`
	AppType      string   `yaml:"type,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// Overrides carries per-module user placement overrides, keyed by module id
// or by a capability name the module provides.
type Overrides struct {
	Modules      map[string]*PlacementOverride `yaml:"modules,omitempty"`
	Capabilities map[string]string             `yaml:"capabilities,omitempty"`
}

type PlacementOverride struct {
	TargetPackage *string  `yaml:"targetPackage,omitempty"`
	TargetApps    []string `yaml:"targetApps,omitempty"`
}

func Read(filePath string) (*Genome, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadFromContents(bytes, abs)
}

func ReadFromContents(contents []byte, absPath string) (*Genome, error) {
	var g Genome
	if err := yaml.UnmarshalWithOptions(contents, &g, yaml.Strict()); err != nil {
		return nil, err
	}

	s := schema.ManifestMeta{
		APIVersion: GenomeAPIVersion,
		Kind:       GenomeKind,
	}
	if err := s.ValidateSchema(g.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGenome, err.Error())
	}

	g.AbsolutePath = absPath
	return &g, nil
}

// IsMonorepo reports whether target placement applies at all. Single-package
// layouts skip placement entirely.
func (g *Genome) IsMonorepo() bool {
	if g.Workspace.Layout != "" {
		return g.Workspace.Layout == LayoutMonorepo
	}
	return len(g.Apps) > 0
}

// MarketplaceNames returns the declared marketplace names, for error
// remediation output.
func (g *Genome) MarketplaceNames() []string {
	names := make([]string, 0, len(g.Marketplaces))
	for name := range g.Marketplaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

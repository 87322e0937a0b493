// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package recipebook

import (
	"fmt"
	"os"
	"slices"

	"genforge.dev/x/forge/pkg/schema"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidRecipeBook = fmt.Errorf("invalid recipe book")

const (
	RecipeBookKind          = "RecipeBook"
	RecipeBookSchemaVersion = "v1"
	RecipeBookAPIVersion    = schema.APIGroup + "/" + RecipeBookSchemaVersion
)

// RecipeBook is a marketplace's versioned catalog: package name -> providers
// -> concrete module references plus package-level dependencies.
type RecipeBook struct {
	schema.ManifestMeta `yaml:",inline"`
	Version             string                    `yaml:"version,omitempty"`
	Packages            map[string]*PackageRecipe `yaml:"packages"`
	// PackageDirs optionally maps workspace package names to the directory
	// the marketplace recommends for them.
	PackageDirs map[string]string `yaml:"packageDirs,omitempty"`

	// Marketplace is the genome-declared name of the source this book was
	// loaded from. Set by the loader, not serialized.
	Marketplace string `yaml:"-"`
}

type PackageRecipe struct {
	DefaultProvider string               `yaml:"defaultProvider"`
	Providers       map[string]*Provider `yaml:"providers"`
}

type Provider struct {
	Modules      []*ModuleRef `yaml:"modules"`
	Dependencies Dependencies `yaml:"dependencies,omitempty"`
}

type Dependencies struct {
	Packages []string `yaml:"packages,omitempty"`
}

// ModuleRef is a recipe's reference to a concrete module, optionally carrying
// placement and compatibility metadata.
type ModuleRef struct {
	ID                string   `yaml:"id"`
	Version           string   `yaml:"version"`
	TargetPackage     *string  `yaml:"targetPackage,omitempty"`
	TargetApps        []string `yaml:"targetApps,omitempty"`
	RequiredFramework string   `yaml:"requiredFramework,omitempty"`
	RequiredAppTypes  []string `yaml:"requiredAppTypes,omitempty"`
}

func Read(filePath string) (*RecipeBook, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ReadContents(bytes)
}

func ReadContents(contents []byte) (*RecipeBook, error) {
	var b RecipeBook
	if err := yaml.UnmarshalWithOptions(contents, &b, yaml.Strict()); err != nil {
		return nil, err
	}

	s := schema.ManifestMeta{
		APIVersion: RecipeBookAPIVersion,
		Kind:       RecipeBookKind,
	}
	if err := s.ValidateSchema(b.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecipeBook, err.Error())
	}

	return &b, nil
}

func (b *RecipeBook) Package(name string) (*PackageRecipe, bool) {
	p, ok := b.Packages[name]
	return p, ok
}

// Provider resolves a provider by name, falling back to the recipe's declared
// default when name is empty.
func (p *PackageRecipe) Provider(name string) (*Provider, bool) {
	if name == "" {
		name = p.DefaultProvider
	}
	prov, ok := p.Providers[name]
	return prov, ok
}

func (p *PackageRecipe) ProviderNames() []string {
	names := lo.Keys(p.Providers)
	slices.Sort(names)
	return names
}

// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expander

import (
	"context"
	"fmt"
	"testing"

	"genforge.dev/x/forge/pkg/capability"
	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/recipebook"
	"genforge.dev/x/forge/pkg/resolvererrors"
	"genforge.dev/x/forge/pkg/schema"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves a recipe book and manifests from memory.
type fakeSource struct {
	book      *recipebook.RecipeBook
	manifests map[string]*genmodule.Manifest
}

var _ marketplace.Source = (*fakeSource)(nil)

func (s *fakeSource) LoadRecipeBook(_ context.Context) (*recipebook.RecipeBook, error) {
	return s.book, nil
}

func (s *fakeSource) LoadModuleManifest(_ context.Context, moduleID string) (*genmodule.Manifest, error) {
	m, ok := s.manifests[moduleID]
	if !ok {
		return nil, fmt.Errorf("module %q not found", moduleID)
	}
	return m, nil
}

func (s *fakeSource) Describe() marketplace.SourceInfo {
	return marketplace.SourceInfo{Type: marketplace.SourceTypeLocal, Source: "fake"}
}

func manifest(id, version string, provides []capability.Capability, requires []capability.Requirement) *genmodule.Manifest {
	return &genmodule.Manifest{
		ManifestMeta: schema.ManifestMeta{APIVersion: genmodule.ModuleAPIVersion, Kind: genmodule.ModuleKind},
		Spec: &genmodule.Spec{
			ID:            id,
			Version:       version,
			Provides:      provides,
			Prerequisites: genmodule.Prerequisites{Capabilities: requires},
		},
	}
}

func ref(id, version string) *recipebook.ModuleRef {
	return &recipebook.ModuleRef{ID: id, Version: version}
}

func testCatalog() *marketplace.Catalog {
	book := &recipebook.RecipeBook{
		Packages: map[string]*recipebook.PackageRecipe{
			"auth": {
				DefaultProvider: "better-auth",
				Providers: map[string]*recipebook.Provider{
					"better-auth": {
						Modules:      []*recipebook.ModuleRef{ref("adapters/auth/better-auth", "1.2.0")},
						Dependencies: recipebook.Dependencies{Packages: []string{"database"}},
					},
					"clerk": {
						Modules: []*recipebook.ModuleRef{ref("adapters/auth/clerk", "5.0.0")},
					},
				},
			},
			"payments": {
				DefaultProvider: "stripe",
				Providers: map[string]*recipebook.Provider{
					"stripe": {
						Modules:      []*recipebook.ModuleRef{ref("adapters/payments/stripe", "2.0.0")},
						Dependencies: recipebook.Dependencies{Packages: []string{"database"}},
					},
				},
			},
			"database": {
				DefaultProvider: "drizzle",
				Providers: map[string]*recipebook.Provider{
					"drizzle": {
						Modules: []*recipebook.ModuleRef{ref("adapters/database/drizzle", "0.30.0")},
					},
				},
			},
		},
	}

	source := &fakeSource{
		book: book,
		manifests: map[string]*genmodule.Manifest{
			"adapters/auth/better-auth": manifest("adapters/auth/better-auth", "1.2.0",
				[]capability.Capability{{Name: "auth", Version: "1.2.0"}},
				[]capability.Requirement{{Name: "database", Version: ">=0.30.0"}}),
			"adapters/auth/clerk": manifest("adapters/auth/clerk", "5.0.0",
				[]capability.Capability{{Name: "auth", Version: "5.0.0"}}, nil),
			"adapters/payments/stripe": manifest("adapters/payments/stripe", "2.0.0",
				[]capability.Capability{{Name: "payments", Version: "2.0.0"}},
				[]capability.Requirement{{Name: "database"}}),
			"adapters/database/drizzle": manifest("adapters/database/drizzle", "0.30.0",
				[]capability.Capability{{Name: "database", Version: "0.30.0"}}, nil),
		},
	}

	return marketplace.NewCatalog(map[string]marketplace.Source{"official": source})
}

func testGenome(packages map[string]*genome.PackageConfig) *genome.Genome {
	return &genome.Genome{
		Marketplaces: map[string]*genome.MarketplaceRef{"official": {Source: "fake"}},
		Packages:     packages,
	}
}

func moduleIDs(modules []*genmodule.Module) []string {
	return lo.Map(modules, func(m *genmodule.Module, _ int) string { return m.ID.Raw })
}

func TestExpandFollowsDependencies(t *testing.T) {
	g := testGenome(map[string]*genome.PackageConfig{
		"auth": {Marketplace: "official"},
	})

	modules, err := New(testCatalog()).Expand(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, []string{"adapters/auth/better-auth", "adapters/database/drizzle"}, moduleIDs(modules))

	auth := modules[0]
	assert.Equal(t, "1.2.0", auth.Version)
	assert.Equal(t, "official", auth.Marketplace)
	assert.Equal(t, "auth", auth.SourcePackage)
	assert.Regexp(t, "^sha256:", auth.Integrity)
	assert.Equal(t, genmodule.CategoryAdapter, auth.ID.Category)
}

func TestExpandDeduplicatesDiamondDependencies(t *testing.T) {
	// auth and payments both depend on database; it expands once
	g := testGenome(map[string]*genome.PackageConfig{
		"auth":     {Marketplace: "official"},
		"payments": {Marketplace: "official"},
	})

	modules, err := New(testCatalog()).Expand(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"adapters/auth/better-auth",
		"adapters/database/drizzle",
		"adapters/payments/stripe",
	}, moduleIDs(modules))
}

func TestExpandHonorsProviderSelection(t *testing.T) {
	g := testGenome(map[string]*genome.PackageConfig{
		"auth": {Marketplace: "official", Provider: "clerk"},
	})

	modules, err := New(testCatalog()).Expand(context.Background(), g)
	require.NoError(t, err)

	// clerk declares no package dependencies
	assert.Equal(t, []string{"adapters/auth/clerk"}, moduleIDs(modules))
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name     string
		packages map[string]*genome.PackageConfig
		contains string
	}{
		{
			name:     "unknown marketplace",
			packages: map[string]*genome.PackageConfig{"auth": {Marketplace: "community"}},
			contains: `unknown marketplace "community"`,
		},
		{
			name:     "unknown package",
			packages: map[string]*genome.PackageConfig{"email": {Marketplace: "official"}},
			contains: `package "email" not found`,
		},
		{
			name:     "unknown provider",
			packages: map[string]*genome.PackageConfig{"auth": {Marketplace: "official", Provider: "supabase"}},
			contains: `unknown provider "supabase" for package "auth". valid providers: [better-auth, clerk]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testCatalog()).Expand(context.Background(), testGenome(tt.packages))

			var re *resolvererrors.ResolutionError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, resolvererrors.CatalogResolution, re.Code)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

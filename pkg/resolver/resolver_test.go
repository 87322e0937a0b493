// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/placement"
	"genforge.dev/x/forge/pkg/planlock"
	"genforge.dev/x/forge/pkg/resolvererrors"
	"genforge.dev/x/forge/pkg/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	config, err := forgeconfig.GetWithCustomForgeHome(t.TempDir())
	require.NoError(t, err)
	return New(config)
}

func testGenome(t *testing.T) *genome.Genome {
	t.Helper()
	marketplaceDir := testutil.TestdataPath(t, "marketplace")

	return &genome.Genome{
		Workspace: genome.Workspace{Name: "shop", Layout: genome.LayoutMonorepo},
		Marketplaces: map[string]*genome.MarketplaceRef{
			"official": {Source: marketplaceDir},
		},
		Packages: map[string]*genome.PackageConfig{
			"auth": {Marketplace: "official"},
		},
		Apps: map[string]*genome.App{
			"web": {Framework: "nextjs", Path: "apps/web"},
		},
		AbsolutePath: filepath.Join(t.TempDir(), "genome.yaml"),
	}
}

func TestResolveEndToEnd(t *testing.T) {
	g := testGenome(t)
	result, err := testEngine(t).Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.False(t, result.Reused)
	assert.Empty(t, result.Skips)

	lock := result.Lock
	require.NotNil(t, lock)
	assert.Equal(t, planlock.PlanLockKind, lock.Kind)
	assert.NotEmpty(t, lock.ResolvedAt)

	// the dependency closure pulls in the database package transitively
	ids := lo.Map(lock.Modules, func(m *planlock.LockedModule, _ int) string { return m.ID })
	assert.Equal(t, []string{"adapters/auth/better-auth", "adapters/database/drizzle"}, ids)

	// execution order puts the prerequisite provider first
	assert.Equal(t, []string{"adapters/database/drizzle", "adapters/auth/better-auth"}, lock.ExecutionPlan)

	for _, m := range lock.Modules {
		assert.Equal(t, "official", m.Marketplace)
		assert.Regexp(t, "^sha256:[0-9a-f]{64}$", m.Integrity)
	}

	auth := lock.Modules[0]
	require.NotNil(t, auth.Placement)
	assert.Equal(t, placement.SourceRecipeBook, auth.Placement.Source)
	require.NotNil(t, auth.Placement.TargetPackage)
	assert.Equal(t, "packages/auth", *auth.Placement.TargetPackage)

	require.Contains(t, lock.Marketplaces, "official")
	assert.Equal(t, "local", lock.Marketplaces["official"].Type)

	// the lock file landed next to the genome
	_, err = os.Stat(filepath.Join(filepath.Dir(g.AbsolutePath), forgeconfig.LockFileName))
	require.NoError(t, err)
}

func TestResolveReusesUnchangedLock(t *testing.T) {
	g := testGenome(t)
	engine := testEngine(t)

	first, err := engine.Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	second, err := engine.Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.Lock.ResolvedAt, second.Lock.ResolvedAt)
	assert.Equal(t, first.Lock.GenomeHash, second.Lock.GenomeHash)
}

func TestResolveForceRunsPipelineAgain(t *testing.T) {
	g := testGenome(t)
	engine := testEngine(t)

	_, err := engine.Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	forced, err := engine.Resolve(context.Background(), g, Options{Force: true})
	require.NoError(t, err)
	assert.False(t, forced.Reused)
}

func TestResolveDetectsGenomeChange(t *testing.T) {
	g := testGenome(t)
	engine := testEngine(t)

	first, err := engine.Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	g.Packages["auth"].Provider = "clerk"
	second, err := engine.Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.False(t, second.Reused)
	assert.NotEqual(t, first.Lock.GenomeHash, second.Lock.GenomeHash)

	// clerk has no database prerequisite, so the closure shrinks
	ids := lo.Map(second.Lock.Modules, func(m *planlock.LockedModule, _ int) string { return m.ID })
	assert.Equal(t, []string{"adapters/auth/clerk"}, ids)
}

func TestResolveSkipsModuleWithExhaustedExplicitApps(t *testing.T) {
	g := testGenome(t)
	g.Packages["auth"].TargetApps = []string{"mobile"} // not declared in the genome

	result, err := testEngine(t).Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	require.Len(t, result.Skips, 1)
	assert.Equal(t, "adapters/auth/better-auth", result.Skips[0].ModuleID)

	ids := lo.Map(result.Lock.Modules, func(m *planlock.LockedModule, _ int) string { return m.ID })
	assert.Equal(t, []string{"adapters/database/drizzle"}, ids)
	assert.Equal(t, []string{"adapters/database/drizzle"}, result.Lock.ExecutionPlan)
}

func TestResolveUnknownMarketplace(t *testing.T) {
	g := testGenome(t)
	g.Packages["auth"].Marketplace = "community"

	_, err := testEngine(t).Resolve(context.Background(), g, Options{})
	require.Error(t, err)

	var re *resolvererrors.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, resolvererrors.CatalogResolution, re.Code)
}

func TestResolveSinglePackageSkipsPlacement(t *testing.T) {
	g := testGenome(t)
	g.Workspace.Layout = genome.LayoutSinglePackage
	g.Apps = nil

	result, err := testEngine(t).Resolve(context.Background(), g, Options{})
	require.NoError(t, err)

	for _, m := range result.Lock.Modules {
		assert.Nil(t, m.Placement)
	}
}

func TestBuildSourcesRejectsOci(t *testing.T) {
	g := testGenome(t)
	g.Marketplaces["registry"] = &genome.MarketplaceRef{Source: "oci://ghcr.io/acme/marketplace:v1"}

	config, err := forgeconfig.GetWithCustomForgeHome(t.TempDir())
	require.NoError(t, err)

	_, err = buildSources(g, config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported yet")
}

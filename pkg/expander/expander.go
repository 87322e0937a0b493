// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expander

import (
	"context"
	"log/slog"
	"slices"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/recipebook"
	"genforge.dev/x/forge/pkg/resolvererrors"
	"github.com/samber/lo"
)

// Expander turns requested packages into the concrete modules their
// providers declare, recursively following package-level dependencies.
type Expander struct {
	catalog *marketplace.Catalog
}

func New(catalog *marketplace.Catalog) *Expander {
	return &Expander{catalog: catalog}
}

type workItem struct {
	pkg         string
	marketplace string
	// provider is the explicitly configured provider; empty selects the
	// recipe's declared default.
	provider string
}

// Expand processes each genome package depth-first through a worklist. The
// session's visited set spans the whole run, so a package reached through two
// dependency paths is expanded exactly once.
func (e *Expander) Expand(ctx context.Context, g *genome.Genome) ([]*genmodule.Module, error) {
	session := NewSession()

	names := lo.Keys(g.Packages)
	slices.Sort(names)

	for _, name := range names {
		cfg := g.Packages[name]
		worklist := []workItem{{pkg: name, marketplace: cfg.Marketplace, provider: cfg.Provider}}

		for len(worklist) > 0 {
			item := worklist[0]
			worklist = worklist[1:]

			deps, err := e.expandPackage(ctx, session, item)
			if err != nil {
				return nil, err
			}
			// dependencies are expanded before the remaining siblings
			worklist = append(deps, worklist...)
		}
	}

	return session.Modules(), nil
}

func (e *Expander) expandPackage(ctx context.Context, session *Session, item workItem) ([]workItem, error) {
	if session.Visited.Contains(item.pkg) {
		return nil, nil
	}
	session.Visited.Add(item.pkg)

	book, err := e.catalog.RecipeBook(ctx, item.marketplace)
	if err != nil {
		return nil, err
	}

	recipe, ok := book.Package(item.pkg)
	if !ok {
		return nil, resolvererrors.NewUnknownPackageError(item.pkg, item.marketplace)
	}

	providerName := item.provider
	if providerName == "" {
		providerName = recipe.DefaultProvider
	}
	provider, ok := recipe.Provider(providerName)
	if !ok {
		return nil, resolvererrors.NewUnknownProviderError(providerName, item.pkg, recipe.ProviderNames())
	}

	slog.Debug("expanding package", "package", item.pkg, "marketplace", item.marketplace, "provider", providerName)

	for _, ref := range provider.Modules {
		m, err := e.newModule(ctx, item, ref)
		if err != nil {
			return nil, err
		}
		session.Add(m)
	}

	// package-level dependencies use the same marketplace and their own
	// recipe's default provider
	return lo.Map(provider.Dependencies.Packages, func(dep string, _ int) workItem {
		return workItem{pkg: dep, marketplace: item.marketplace}
	}), nil
}

func (e *Expander) newModule(ctx context.Context, item workItem, ref *recipebook.ModuleRef) (*genmodule.Module, error) {
	manifest, err := e.catalog.ModuleManifest(ctx, item.marketplace, ref.ID)
	if err != nil {
		return nil, err
	}

	id, err := genmodule.ParseID(ref.ID)
	if err != nil {
		return nil, resolvererrors.NewCatalogIOError(item.marketplace, err)
	}

	integrity, err := manifest.Integrity()
	if err != nil {
		return nil, err
	}

	version := ref.Version
	if version == "" {
		version = manifest.Spec.Version
	}

	return &genmodule.Module{
		ID:                id,
		Version:           version,
		Marketplace:       item.marketplace,
		SourcePackage:     item.pkg,
		Provides:          manifest.Spec.Provides,
		Prerequisites:     manifest.Spec.Prerequisites.Capabilities,
		TargetPackage:     manifest.Spec.TargetPackage,
		TargetApps:        manifest.Spec.TargetApps,
		RequiredFramework: ref.RequiredFramework,
		RequiredAppTypes:  ref.RequiredAppTypes,
		Integrity:         integrity,
	}, nil
}

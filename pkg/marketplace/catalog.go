// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	"slices"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/recipebook"
	"genforge.dev/x/forge/pkg/resolvererrors"
	"github.com/samber/lo"
)

// Catalog caches recipe books and module manifests for one resolution
// invocation. Each marketplace is loaded at most once; after loading the
// cache is only read. It is never shared across concurrent runs.
type Catalog struct {
	sources   map[string]Source
	books     map[string]*recipebook.RecipeBook
	manifests map[string]*genmodule.Manifest
}

func NewCatalog(sources map[string]Source) *Catalog {
	return &Catalog{
		sources:   sources,
		books:     map[string]*recipebook.RecipeBook{},
		manifests: map[string]*genmodule.Manifest{},
	}
}

func (c *Catalog) SourceNames() []string {
	names := lo.Keys(c.sources)
	slices.Sort(names)
	return names
}

func (c *Catalog) RecipeBook(ctx context.Context, marketplaceName string) (*recipebook.RecipeBook, error) {
	if book, ok := c.books[marketplaceName]; ok {
		return book, nil
	}

	source, ok := c.sources[marketplaceName]
	if !ok {
		return nil, resolvererrors.NewUnknownMarketplaceError(marketplaceName, c.SourceNames())
	}

	book, err := source.LoadRecipeBook(ctx)
	if err != nil {
		return nil, resolvererrors.NewCatalogIOError(marketplaceName, err)
	}
	c.books[marketplaceName] = book
	return book, nil
}

// Books loads and returns every marketplace's recipe book.
func (c *Catalog) Books(ctx context.Context) ([]*recipebook.RecipeBook, error) {
	books := make([]*recipebook.RecipeBook, 0, len(c.sources))
	for _, name := range c.SourceNames() {
		book, err := c.RecipeBook(ctx, name)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

func (c *Catalog) ModuleManifest(ctx context.Context, marketplaceName, moduleID string) (*genmodule.Manifest, error) {
	key := marketplaceName + "#" + moduleID
	if m, ok := c.manifests[key]; ok {
		return m, nil
	}

	source, ok := c.sources[marketplaceName]
	if !ok {
		return nil, resolvererrors.NewUnknownMarketplaceError(marketplaceName, c.SourceNames())
	}

	m, err := source.LoadModuleManifest(ctx, moduleID)
	if err != nil {
		return nil, resolvererrors.NewCatalogIOError(marketplaceName, err)
	}
	c.manifests[key] = m
	return m, nil
}

// Describe returns each marketplace's source metadata for the lock file.
func (c *Catalog) Describe() map[string]SourceInfo {
	return lo.MapValues(c.sources, func(s Source, _ string) SourceInfo {
		return s.Describe()
	})
}

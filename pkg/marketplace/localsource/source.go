// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package localsource

import (
	"context"
	"fmt"
	"path/filepath"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/recipebook"
	"genforge.dev/x/forge/pkg/utils"
)

// LocalSource serves a marketplace from a directory tree:
//
//	<root>/recipebook.yaml
//	<root>/modules/<module-id>/module.yaml
type LocalSource struct {
	name string
	root string
}

var _ marketplace.Source = (*LocalSource)(nil)

func New(name, root string) (*LocalSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ok, err := utils.DirExists(abs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("marketplace %q: directory %q does not exist", name, abs)
	}
	return &LocalSource{name: name, root: abs}, nil
}

func (s *LocalSource) LoadRecipeBook(_ context.Context) (*recipebook.RecipeBook, error) {
	book, err := recipebook.Read(filepath.Join(s.root, marketplace.RecipeBookFilename))
	if err != nil {
		return nil, err
	}
	book.Marketplace = s.name
	return book, nil
}

func (s *LocalSource) LoadModuleManifest(_ context.Context, moduleID string) (*genmodule.Manifest, error) {
	p := filepath.Join(s.root, marketplace.ModulesDirName, filepath.FromSlash(moduleID), marketplace.ModuleManifestName)
	return genmodule.ReadManifest(p)
}

func (s *LocalSource) Describe() marketplace.SourceInfo {
	return marketplace.SourceInfo{
		Type:   marketplace.SourceTypeLocal,
		Source: s.root,
	}
}

// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	"fmt"
	"strings"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/recipebook"
	"oras.land/oras-go/v2/registry"
)

const (
	RecipeBookFilename = "recipebook.yaml"
	ModulesDirName     = "modules"
	ModuleManifestName = "module.yaml"
)

const (
	SourceTypeLocal = "local"
	SourceTypeGit   = "git"
	SourceTypeOci   = "oci"
)

// Source is the read-only catalog access collaborator. Loading is the only
// place resolution performs I/O; everything downstream is pure.
type Source interface {
	LoadRecipeBook(ctx context.Context) (*recipebook.RecipeBook, error)
	LoadModuleManifest(ctx context.Context, moduleID string) (*genmodule.Manifest, error)
	Describe() SourceInfo
}

// SourceInfo is recorded into the lock file's marketplace metadata.
type SourceInfo struct {
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
	// Ref pins the content actually used: a git commit hash, or a
	// normalized OCI reference.
	Ref string `yaml:"ref,omitempty"`
}

// NormalizeOciRef validates and normalizes an oci:// marketplace reference
// into its registry/repository:tag form.
func NormalizeOciRef(source string) (string, error) {
	ref, err := registry.ParseReference(strings.TrimPrefix(source, "oci://"))
	if err != nil {
		return "", fmt.Errorf("invalid oci marketplace reference %q: %w", source, err)
	}
	if ref.Reference == "" {
		return fmt.Sprintf("oci://%s/%s", ref.Registry, ref.Repository), nil
	}
	return fmt.Sprintf("oci://%s/%s:%s", ref.Registry, ref.Repository, ref.Reference), nil
}

func IsOciSource(source string) bool {
	return strings.HasPrefix(source, "oci://")
}

func IsGitSource(source string) bool {
	return strings.HasPrefix(source, "git@") ||
		strings.HasPrefix(source, "git+") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://") ||
		strings.HasSuffix(strings.TrimSuffix(source, "/"), ".git")
}

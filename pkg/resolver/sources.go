// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"fmt"
	"path/filepath"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/marketplace/gitsource"
	"genforge.dev/x/forge/pkg/marketplace/localsource"
	"genforge.dev/x/forge/pkg/utils"
)

// buildSources instantiates a marketplace source per genome marketplace
// declaration, dispatching on the source string's shape.
func buildSources(g *genome.Genome, config *forgeconfig.Config) (map[string]marketplace.Source, error) {
	sources := map[string]marketplace.Source{}

	for name, ref := range g.Marketplaces {
		switch {
		case marketplace.IsOciSource(ref.Source):
			normalized, err := marketplace.NormalizeOciRef(ref.Source)
			if err != nil {
				return nil, err
			}
			// TODO: serve oci marketplaces from an oras-backed source once
			// the marketplace artifact layout is settled
			return nil, fmt.Errorf("marketplace %q: oci source %q is not supported yet", name, normalized)
		case marketplace.IsGitSource(ref.Source):
			sources[name] = gitsource.New(name, ref.Source, config)
		default:
			// a local directory, relative paths anchored at the genome file
			root := utils.ResolvePath(filepath.Dir(g.AbsolutePath), ref.Source)
			src, err := localsource.New(name, root)
			if err != nil {
				return nil, err
			}
			sources[name] = src
		}
	}

	return sources, nil
}

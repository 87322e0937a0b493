// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver orchestrates a resolution run: recipe expansion, capability
// graph validation, target placement and lock file materialization.
package resolver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"genforge.dev/x/forge/pkg/capgraph"
	"genforge.dev/x/forge/pkg/expander"
	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/placement"
	"genforge.dev/x/forge/pkg/planlock"
	"genforge.dev/x/forge/pkg/utils/stringset"
	"github.com/samber/lo"
)

type Engine struct {
	config *forgeconfig.Config
}

func New(config *forgeconfig.Config) *Engine {
	return &Engine{config: config}
}

type Options struct {
	// Force re-resolves even when the existing lock file still matches the
	// genome.
	Force bool
	// LockPath overrides the lock file location; defaults to forge-lock.yaml
	// next to the genome.
	LockPath string
}

type Result struct {
	Lock *planlock.PlanLock
	// Reused is true when the existing lock file was returned untouched.
	Reused bool
	Skips  []placement.Skip
}

// Resolve runs the full pipeline for one genome. Resolution either succeeds
// completely and writes the lock file, or fails without touching it; the only
// non-fatal outcome is a placement skip, reported in the result.
func (e *Engine) Resolve(ctx context.Context, g *genome.Genome, opts Options) (*Result, error) {
	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = filepath.Join(filepath.Dir(g.AbsolutePath), forgeconfig.LockFileName)
	}

	if !opts.Force {
		if existing := readExistingLock(lockPath); existing != nil {
			reuse, err := planlock.ShouldReuse(existing, g)
			if err != nil {
				return nil, err
			}
			if reuse {
				slog.Debug("genome unchanged, reusing lock file", "path", lockPath)
				return &Result{Lock: existing, Reused: true}, nil
			}
		}
	}

	sources, err := buildSources(g, e.config)
	if err != nil {
		return nil, err
	}
	catalog := marketplace.NewCatalog(sources)

	modules, err := expander.New(catalog).Expand(ctx, g)
	if err != nil {
		return nil, err
	}

	graph, err := capgraph.Build(modules)
	if err != nil {
		return nil, err
	}
	plan, err := graph.TopoSort()
	if err != nil {
		return nil, err
	}

	placements := map[string]*placement.Placement{}
	var skips []placement.Skip

	if g.IsMonorepo() {
		books, err := catalog.Books(ctx)
		if err != nil {
			return nil, err
		}

		resolver := placement.New(g, books, slog.Warn)
		skipped := stringset.New()
		for _, m := range modules {
			p, skip, err := resolver.Resolve(m)
			if err != nil {
				return nil, err
			}
			if skip != nil {
				slog.Warn("skipping module", "module", skip.ModuleID, "reason", skip.Reason)
				skips = append(skips, *skip)
				skipped.Add(m.ID.Raw)
				continue
			}
			if p != nil {
				placements[m.ID.Raw] = p
			}
		}

		// skipped modules leave both the module list and the execution plan
		if len(skips) > 0 {
			modules = lo.Filter(modules, func(m *genmodule.Module, _ int) bool {
				return !skipped.Contains(m.ID.Raw)
			})
			plan = lo.Filter(plan, func(id string, _ int) bool {
				return !skipped.Contains(id)
			})
		}
	}

	lock, err := planlock.Materialize(modules, plan, placements, g, catalog.Describe())
	if err != nil {
		return nil, err
	}
	if err := planlock.Write(ctx, lock, lockPath); err != nil {
		return nil, err
	}

	return &Result{Lock: lock, Skips: skips}, nil
}

// readExistingLock treats a missing, unreadable or schema-invalid lock file
// as absent; resolution then simply regenerates it.
func readExistingLock(lockPath string) *planlock.PlanLock {
	existing, err := planlock.ReadPlanLock(lockPath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("ignoring unreadable lock file", "path", lockPath, "err", err.Error())
		}
		return nil
	}
	return existing
}

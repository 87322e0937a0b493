// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/recipebook"
)

// Source identifies which step of the priority chain produced a placement.
type Source string

const (
	SourceUserOverride     Source = "user_override"
	SourceGenomeDefinition Source = "genome_definition"
	SourceModuleMetadata   Source = "module_metadata"
	SourceRecipeBook       Source = "recipe_book"
	SourceGenericFallback  Source = "generic_fallback"
)

// Placement is where a module's generated output belongs in a monorepo
// workspace: a shared package path or a set of apps, never both. Framework
// modules live inside apps, not shared packages.
type Placement struct {
	TargetPackage *string  `yaml:"targetPackage"`
	TargetApps    []string `yaml:"targetApps,omitempty"`
	Source        Source   `yaml:"source"`
}

// Skip is the one non-fatal resolution outcome: a module whose explicitly
// declared app targets all failed compatibility filtering. The module is
// excluded from the plan and the skip recorded as a diagnostic.
type Skip struct {
	ModuleID string `yaml:"module"`
	Reason   string `yaml:"reason"`
}

type Resolver struct {
	genome *genome.Genome
	books  []*recipebook.RecipeBook

	warnFn func(msg string, args ...any)
}

// New builds a placement resolver for one genome. The resolver is only
// consulted for monorepo layouts; single-package projects skip placement.
func New(g *genome.Genome, books []*recipebook.RecipeBook, warnFn func(msg string, args ...any)) *Resolver {
	return &Resolver{genome: g, books: books, warnFn: warnFn}
}

// candidate is a raw placement before app filtering and path normalization.
type candidate struct {
	pkg    string
	apps   []string
	source Source

	// explicitApps is true when apps were literally declared somewhere, as
	// opposed to widened from framework matching. Exhausting an explicit
	// list excludes the module; exhausting a widened one falls back to the
	// package target.
	explicitApps bool
}

// Resolve walks the priority chain, first match wins. It returns the
// placement, or a skip diagnostic, or neither when no step constrains the
// module.
func (r *Resolver) Resolve(m *genmodule.Module) (*Placement, *Skip, error) {
	cand := r.candidate(m)
	if cand == nil {
		return nil, nil, nil
	}
	return r.finalize(m, cand)
}

func (r *Resolver) candidate(m *genmodule.Module) *candidate {
	if c := r.fromUserOverride(m); c != nil {
		return c
	}
	if c := r.fromGenomeDefinition(m); c != nil {
		return c
	}
	if c := r.fromModuleMetadata(m); c != nil {
		return c
	}
	if c := r.fromRecipeBooks(m); c != nil {
		return c
	}
	return r.fromStructuralFallback(m)
}

func (r *Resolver) fromUserOverride(m *genmodule.Module) *candidate {
	o := r.genome.Overrides
	if o == nil {
		return nil
	}

	if override, ok := o.Modules[m.ID.Raw]; ok {
		return &candidate{
			pkg:          deref(override.TargetPackage),
			apps:         override.TargetApps,
			source:       SourceUserOverride,
			explicitApps: len(override.TargetApps) > 0,
		}
	}

	// capability-name keyed overrides
	caps := make([]string, 0, len(m.Provides))
	for _, cap := range m.Provides {
		caps = append(caps, cap.Name)
	}
	slices.Sort(caps)
	for _, cap := range caps {
		if pkg, ok := o.Capabilities[cap]; ok {
			return &candidate{pkg: pkg, source: SourceUserOverride}
		}
	}
	return nil
}

func (r *Resolver) fromGenomeDefinition(m *genmodule.Module) *candidate {
	cfg, ok := r.genome.Packages[m.SourcePackage]
	if !ok {
		return nil
	}
	if cfg.TargetPackage == nil && len(cfg.TargetApps) == 0 {
		return nil
	}
	return &candidate{
		pkg:          deref(cfg.TargetPackage),
		apps:         cfg.TargetApps,
		source:       SourceGenomeDefinition,
		explicitApps: len(cfg.TargetApps) > 0,
	}
}

// fromModuleMetadata covers placement already attached to the module object
// by intermediate conversion stages (typically its own manifest).
func (r *Resolver) fromModuleMetadata(m *genmodule.Module) *candidate {
	if m.TargetPackage == nil && len(m.TargetApps) == 0 {
		return nil
	}
	return &candidate{
		pkg:          deref(m.TargetPackage),
		apps:         m.TargetApps,
		source:       SourceModuleMetadata,
		explicitApps: len(m.TargetApps) > 0,
	}
}

func (r *Resolver) fromRecipeBooks(m *genmodule.Module) *candidate {
	ref := r.findModuleRef(m.ID.Raw)
	if ref == nil {
		return nil
	}

	// The same module matching both the recipe book and the structural
	// fallback hints at an ambiguous genome; the recipe book is
	// authoritative, but the overlap is flagged.
	if fb := r.fromStructuralFallback(m); fb != nil && r.warnFn != nil {
		r.warnFn("module placement matches both its recipe book and the structural fallback; using the recipe book",
			"module", m.ID.Raw)
	}

	if m.ID.IsFramework() {
		// framework modules live inside every app of their framework,
		// never in a shared package
		return &candidate{
			apps:   r.appsByFramework(m.ID.FrameworkName()),
			source: SourceRecipeBook,
		}
	}

	if ref.TargetPackage == nil && len(ref.TargetApps) == 0 {
		return nil
	}
	return &candidate{
		pkg:          deref(ref.TargetPackage),
		apps:         ref.TargetApps,
		source:       SourceRecipeBook,
		explicitApps: len(ref.TargetApps) > 0,
	}
}

// structural layers the generic fallback recognizes in module ids. Placement
// is inferred from id structure only, never from technology names, so the
// fallback stays provider-agnostic.
var structuralLayers = map[string]struct{}{
	"frontend": {},
	"backend":  {},
	"database": {},
	"stack":    {},
}

func (r *Resolver) fromStructuralFallback(m *genmodule.Module) *candidate {
	if m.ID.IsFramework() {
		apps := r.appsByFramework(m.ID.FrameworkName())
		if len(apps) == 0 {
			return nil
		}
		return &candidate{apps: apps, source: SourceGenericFallback}
	}

	if _, ok := structuralLayers[m.ID.Layer]; ok {
		return &candidate{pkg: m.ID.Layer, source: SourceGenericFallback}
	}
	return nil
}

func (r *Resolver) findModuleRef(moduleID string) *recipebook.ModuleRef {
	for _, book := range r.books {
		for _, recipe := range book.Packages {
			for _, provider := range recipe.Providers {
				for _, ref := range provider.Modules {
					if ref.ID == moduleID {
						return ref
					}
				}
			}
		}
	}
	return nil
}

func (r *Resolver) appsByFramework(framework string) []string {
	var apps []string
	for id, app := range r.genome.Apps {
		if app.Framework == framework {
			apps = append(apps, id)
		}
	}
	slices.Sort(apps)
	return apps
}

func (r *Resolver) finalize(m *genmodule.Module, cand *candidate) (*Placement, *Skip, error) {
	apps := r.filterApps(m, cand.apps)

	if len(apps) == 0 {
		if cand.explicitApps {
			return nil, &Skip{
				ModuleID: m.ID.Raw,
				Reason: fmt.Sprintf("none of the declared target apps %v are compatible with the module's requirements",
					cand.apps),
			}, nil
		}
		if cand.pkg == "" {
			return nil, &Skip{
				ModuleID: m.ID.Raw,
				Reason:   "no target package and no compatible app",
			}, nil
		}
		// widened apps emptied out; fall back to the package target
	}

	p := &Placement{Source: cand.source, TargetApps: apps}
	if cand.pkg != "" && len(apps) == 0 {
		normalized, err := r.normalizePackagePath(cand.pkg)
		if err != nil {
			return nil, nil, err
		}
		p.TargetPackage = &normalized
	}
	return p, nil, nil
}

// filterApps keeps the apps compatible with the module's declared framework
// and app-type requirements. App ids not present in the genome are dropped.
func (r *Resolver) filterApps(m *genmodule.Module, appIDs []string) []string {
	var kept []string
	for _, id := range appIDs {
		app, ok := r.genome.Apps[id]
		if !ok {
			continue
		}
		if m.RequiredFramework != "" && app.Framework != m.RequiredFramework {
			continue
		}
		if len(m.RequiredAppTypes) > 0 && !slices.Contains(m.RequiredAppTypes, app.AppType) {
			continue
		}
		kept = append(kept, id)
	}
	slices.Sort(kept)
	return kept
}

// normalizePackagePath turns a bare package name into a workspace path: the
// genome's known name->path map first, then any recipe book's declared
// package directory, then the packages/<name> convention.
func (r *Resolver) normalizePackagePath(pkg string) (string, error) {
	if strings.Contains(pkg, "/") {
		return path.Clean(pkg), nil
	}

	if p, ok := r.genome.Workspace.PackageDirs[pkg]; ok {
		return path.Clean(p), nil
	}

	for _, book := range r.books {
		if p, ok := book.PackageDirs[pkg]; ok {
			return path.Clean(p), nil
		}
	}

	return path.Join("packages", pkg), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

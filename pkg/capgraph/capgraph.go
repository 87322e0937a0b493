// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package capgraph

import (
	"slices"

	"genforge.dev/x/forge/pkg/capability"
	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/resolvererrors"
)

// Graph is the directed capability-dependency graph over a fixed module
// list. An edge module -> provider exists when the module requires a
// capability the provider supplies. Built once per resolution, then
// immutable.
type Graph struct {
	modules []*genmodule.Module
	edges   map[string][]string
}

// Build validates the module list and constructs the graph. Validation order
// is fixed: capability conflicts first, then missing or mismatched
// prerequisites, then (during sorting) cycles. Only the most fundamental
// failure class of a run is surfaced.
func Build(modules []*genmodule.Module) (*Graph, error) {
	if err := checkConflicts(modules); err != nil {
		return nil, err
	}

	providers := map[string]*genmodule.Module{}
	providedVersion := map[string]string{}
	for _, m := range modules {
		for _, cap := range m.Provides {
			providers[cap.Name] = m
			v := cap.Version
			if v == "" {
				v = m.Version
			}
			providedVersion[cap.Name] = v
		}
	}

	if err := checkPrerequisites(modules, providers, providedVersion); err != nil {
		return nil, err
	}

	edges := map[string][]string{}
	for _, m := range modules {
		for _, req := range m.Prerequisites {
			p := providers[req.Name]
			if p.ID.Raw == m.ID.Raw {
				continue
			}
			if !slices.Contains(edges[m.ID.Raw], p.ID.Raw) {
				edges[m.ID.Raw] = append(edges[m.ID.Raw], p.ID.Raw)
			}
		}
		slices.Sort(edges[m.ID.Raw])
	}

	return &Graph{modules: modules, edges: edges}, nil
}

// Dependencies returns the ids of the modules the given module depends on.
func (g *Graph) Dependencies(moduleID string) []string {
	return g.edges[moduleID]
}

func checkConflicts(modules []*genmodule.Module) error {
	byCapability := map[string][]string{}
	for _, m := range modules {
		for _, cap := range m.Provides {
			byCapability[cap.Name] = append(byCapability[cap.Name], m.ID.Raw)
		}
	}

	names := make([]string, 0, len(byCapability))
	for name := range byCapability {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if providers := byCapability[name]; len(providers) > 1 {
			slices.Sort(providers)
			return resolvererrors.NewCapabilityConflictError(name, providers)
		}
	}
	return nil
}

func checkPrerequisites(modules []*genmodule.Module, providers map[string]*genmodule.Module, providedVersion map[string]string) error {
	var unmet []resolvererrors.UnmetRequirement

	for _, m := range modules {
		for _, req := range m.Prerequisites {
			required := req.Version
			if required == "" {
				required = "any"
			}

			if _, ok := providers[req.Name]; !ok {
				unmet = append(unmet, resolvererrors.UnmetRequirement{
					ModuleID:   m.ID.Raw,
					Capability: req.Name,
					Required:   required,
				})
				continue
			}

			if req.Version == "" {
				continue
			}

			provided := providedVersion[req.Name]
			satisfied := false
			if provided != "" {
				ok, err := capability.Satisfies(provided, req.Version)
				// an unparseable constraint or version is an unmet
				// requirement, not a crash
				satisfied = ok && err == nil
			}
			if !satisfied {
				unmet = append(unmet, resolvererrors.UnmetRequirement{
					ModuleID:   m.ID.Raw,
					Capability: req.Name,
					Required:   required,
					Provided:   provided,
				})
			}
		}
	}

	if len(unmet) > 0 {
		return resolvererrors.NewPrerequisiteError(unmet)
	}
	return nil
}

const (
	white = iota
	gray
	black
)

// TopoSort returns the module ids ordered so every prerequisite precedes its
// dependents. A back-edge into a gray node is a cycle; the returned error
// carries the explicit cyclic path.
func (g *Graph) TopoSort() ([]string, error) {
	colors := map[string]int{}
	var order []string
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		colors[id] = gray
		stack = append(stack, id)

		for _, dep := range g.edges[id] {
			switch colors[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				from := slices.Index(stack, dep)
				return resolvererrors.NewCycleError(slices.Clone(stack[from:]))
			}
		}

		stack = stack[:len(stack)-1]
		colors[id] = black
		order = append(order, id)
		return nil
	}

	for _, m := range g.modules {
		if colors[m.ID.Raw] == white {
			if err := visit(m.ID.Raw); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expander

import (
	"genforge.dev/x/forge/pkg/genmodule"
	"genforge.dev/x/forge/pkg/utils/stringset"
)

// Session is the mutable state of one expansion run: the shared
// visited-package set and the ordered module accumulator. It is owned by a
// single Expand call and never shared across runs.
type Session struct {
	Visited stringset.StringSet

	modules []*genmodule.Module
	seen    stringset.StringSet
}

func NewSession() *Session {
	return &Session{
		Visited: make(stringset.StringSet),
		seen:    make(stringset.StringSet),
	}
}

// Add inserts a module unless one with the same id was already accumulated.
// First insertion wins: a module reached again via a different dependency
// path is not overwritten.
func (s *Session) Add(m *genmodule.Module) bool {
	if s.seen.Contains(m.ID.Raw) {
		return false
	}
	s.seen.Add(m.ID.Raw)
	s.modules = append(s.modules, m)
	return true
}

// Modules returns the accumulated modules in insertion order.
func (s *Session) Modules() []*genmodule.Module {
	return s.modules
}

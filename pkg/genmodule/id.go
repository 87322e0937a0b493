// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package genmodule

import (
	"fmt"
	"strings"
)

// Category is the closed set of module kinds. It is resolved once when a
// module id is parsed, so call sites dispatch on the variant instead of
// re-inspecting id strings.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAdapter
	CategoryConnector
	CategoryFeature
	CategoryFramework
)

func (c Category) String() string {
	switch c {
	case CategoryAdapter:
		return "adapter"
	case CategoryConnector:
		return "connector"
	case CategoryFeature:
		return "feature"
	case CategoryFramework:
		return "framework"
	default:
		return "unknown"
	}
}

var categoryByPrefix = map[string]Category{
	"adapters":   CategoryAdapter,
	"adapter":    CategoryAdapter,
	"connectors": CategoryConnector,
	"connector":  CategoryConnector,
	"features":   CategoryFeature,
	"feature":    CategoryFeature,
	"frameworks": CategoryFramework,
	"framework":  CategoryFramework,
}

// ID is a parsed, namespaced module identifier such as
// "adapters/auth/better-auth" or "adapters/framework/nextjs".
type ID struct {
	Raw      string
	Category Category
	// Layer is the structural segment between category and name,
	// e.g. "auth" or "database". Empty for two-segment ids.
	Layer string
	// Name is the final segment, e.g. "better-auth".
	Name string
}

func ParseID(raw string) (ID, error) {
	segments := strings.Split(strings.Trim(raw, "/"), "/")
	if len(segments) < 2 || segments[0] == "" {
		return ID{}, fmt.Errorf("invalid module id %q: expected <category>/.../<name>", raw)
	}

	id := ID{
		Raw:      raw,
		Category: categoryByPrefix[segments[0]],
		Name:     segments[len(segments)-1],
	}
	if len(segments) > 2 {
		id.Layer = segments[1]
	}
	return id, nil
}

// IsFramework reports whether the id identifies a framework module. Framework
// modules live inside apps matching their framework, never in shared packages.
func (id ID) IsFramework() bool {
	return id.Category == CategoryFramework || id.Layer == "framework"
}

// FrameworkName is the framework a framework module binds to, e.g. "nextjs"
// for "adapters/framework/nextjs".
func (id ID) FrameworkName() string {
	return id.Name
}

func (id ID) String() string {
	return id.Raw
}

// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Capability is a named, optionally versioned contract a module provides.
type Capability struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// Requirement is a capability a module needs, optionally constrained.
// The version field holds a constraint expression, e.g. "^2.0.0".
type Requirement struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

type Operator int

const (
	// Exact is the default when no operator prefixes the constraint.
	Exact Operator = iota
	GreaterOrEqual
	Greater
	// Tilde matches same major+minor with patch >= the constraint's.
	Tilde
	// Caret matches same major with version >= the constraint's.
	Caret
)

type Constraint struct {
	Op      Operator
	Version *semver.Version

	raw string
}

func (c *Constraint) String() string {
	return c.raw
}

// ParseConstraint splits an operator prefix off a constraint expression and
// parses the remainder as a version. Masterminds treats missing trailing
// numeric components as zero, so "~2.4" and "~2.4.0" are equivalent.
func ParseConstraint(raw string) (*Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	op := Exact
	rest := trimmed

	switch {
	case strings.HasPrefix(trimmed, ">="):
		op, rest = GreaterOrEqual, trimmed[2:]
	case strings.HasPrefix(trimmed, ">"):
		op, rest = Greater, trimmed[1:]
	case strings.HasPrefix(trimmed, "~"):
		op, rest = Tilde, trimmed[1:]
	case strings.HasPrefix(trimmed, "^"):
		op, rest = Caret, trimmed[1:]
	case strings.HasPrefix(trimmed, "="):
		op, rest = Exact, trimmed[1:]
	}

	v, err := semver.NewVersion(strings.TrimSpace(rest))
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", raw, err)
	}
	return &Constraint{Op: op, Version: v, raw: trimmed}, nil
}

// Check reports whether a provider's concrete version satisfies the constraint.
func (c *Constraint) Check(provided *semver.Version) bool {
	switch c.Op {
	case GreaterOrEqual:
		return provided.Compare(c.Version) >= 0
	case Greater:
		return provided.Compare(c.Version) > 0
	case Tilde:
		return provided.Major() == c.Version.Major() &&
			provided.Minor() == c.Version.Minor() &&
			provided.Compare(c.Version) >= 0
	case Caret:
		return provided.Major() == c.Version.Major() &&
			provided.Compare(c.Version) >= 0
	default:
		return provided.Equal(c.Version)
	}
}

// Satisfies reports whether a provided concrete version satisfies a raw
// constraint expression. An empty constraint matches any provider.
func Satisfies(providedVersion, constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}

	provided, err := semver.NewVersion(strings.TrimSpace(providedVersion))
	if err != nil {
		return false, fmt.Errorf("invalid provided version %q: %w", providedVersion, err)
	}

	c, err := ParseConstraint(constraint)
	if err != nil {
		return false, err
	}
	return c.Check(provided), nil
}

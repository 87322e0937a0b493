// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolvererrors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CatalogResolution  = "CATALOG_RESOLUTION"
	CapabilityConflict = "CAPABILITY_CONFLICT"
	PrerequisiteUnmet  = "PREREQUISITE_UNMET"
	DependencyCycle    = "DEPENDENCY_CYCLE"
	UnknownError       = "UNKNOWN_ERROR"
)

// ResolutionError is a fatal, pre-lock-file resolution failure.
// Exactly one of the context fields is populated, depending on Code.
type ResolutionError struct {
	Code  string
	Cause error

	// Modules lists every module involved: all providers of a conflicting
	// capability for CAPABILITY_CONFLICT, or the cycle path (in traversal
	// order, first module repeated implicitly) for DEPENDENCY_CYCLE.
	Modules []string

	// Unmet lists every unsatisfied prerequisite for PREREQUISITE_UNMET.
	Unmet []UnmetRequirement
}

type UnmetRequirement struct {
	ModuleID   string `yaml:"module"`
	Capability string `yaml:"capability"`
	Required   string `yaml:"required"`
	Provided   string `yaml:"provided,omitempty"`
}

func (u UnmetRequirement) String() string {
	if u.Provided == "" {
		return fmt.Sprintf("%s requires capability %q (%s) but no module provides it", u.ModuleID, u.Capability, u.Required)
	}
	return fmt.Sprintf("%s requires capability %q (%s) but only %s is provided", u.ModuleID, u.Capability, u.Required, u.Provided)
}

func (r *ResolutionError) Error() string {
	if r.Cause != nil {
		return r.Code + ": " + r.Cause.Error()
	}
	return r.Code
}

func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

func (r *ResolutionError) MarshalYAML() (interface{}, error) {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	m := map[string]interface{}{
		"code":  r.Code,
		"cause": causeStr,
	}
	if len(r.Modules) > 0 {
		m["modules"] = r.Modules
	}
	if len(r.Unmet) > 0 {
		m["unmet"] = r.Unmet
	}
	return m, nil
}

var _ error = (*ResolutionError)(nil)

func NewUnknownMarketplaceError(marketplace string, known []string) *ResolutionError {
	return &ResolutionError{
		Code:  CatalogResolution,
		Cause: fmt.Errorf("unknown marketplace %q. declared marketplaces: [%s]", marketplace, strings.Join(known, ", ")),
	}
}

func NewUnknownPackageError(pkg, marketplace string) *ResolutionError {
	return &ResolutionError{
		Code:  CatalogResolution,
		Cause: fmt.Errorf("package %q not found in marketplace %q", pkg, marketplace),
	}
}

func NewUnknownProviderError(provider, pkg string, valid []string) *ResolutionError {
	return &ResolutionError{
		Code:  CatalogResolution,
		Cause: fmt.Errorf("unknown provider %q for package %q. valid providers: [%s]", provider, pkg, strings.Join(valid, ", ")),
	}
}

// NewCatalogIOError wraps a marketplace load failure. The core never retries;
// the caller decides whether to re-run the whole invocation.
func NewCatalogIOError(marketplace string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:  CatalogResolution,
		Cause: fmt.Errorf("failed to load catalog of marketplace %q: %w", marketplace, cause),
	}
}

func NewCapabilityConflictError(capability string, modules []string) *ResolutionError {
	return &ResolutionError{
		Code:    CapabilityConflict,
		Cause:   fmt.Errorf("capability %q is provided by multiple modules: [%s]", capability, strings.Join(modules, ", ")),
		Modules: modules,
	}
}

func NewPrerequisiteError(unmet []UnmetRequirement) *ResolutionError {
	lines := make([]string, len(unmet))
	for i, u := range unmet {
		lines[i] = u.String()
	}
	return &ResolutionError{
		Code:  PrerequisiteUnmet,
		Cause: errors.New(strings.Join(lines, "; ")),
		Unmet: unmet,
	}
}

func NewCycleError(path []string) *ResolutionError {
	return &ResolutionError{
		Code:    DependencyCycle,
		Cause:   fmt.Errorf("circular capability dependency: %s", strings.Join(append(append([]string{}, path...), path[0]), " -> ")),
		Modules: path,
	}
}

func NewUnknownError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  UnknownError,
		Cause: cause,
	}
}

func Standardize(err error) *ResolutionError {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}

	return NewUnknownError(err)
}

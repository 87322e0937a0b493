// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package genmodule

import (
	"encoding/json"
	"fmt"
	"os"

	"genforge.dev/x/forge/pkg/capability"
	"genforge.dev/x/forge/pkg/schema"
	"github.com/goccy/go-yaml"
	"github.com/opencontainers/go-digest"
)

var ErrInvalidModuleManifest = fmt.Errorf("invalid module manifest")

const (
	ModuleKind          = "Module"
	ModuleSchemaVersion = "v1"
	ModuleAPIVersion    = schema.APIGroup + "/" + ModuleSchemaVersion
)

// Module is the atomic generation unit flowing through resolution. It merges
// the recipe book's module reference with the capability contract of the
// module's own manifest. Modules are never mutated after expansion; placement
// is resolved into the lock file, not back onto the module.
type Module struct {
	ID      ID
	Version string

	// Marketplace and SourcePackage record where expansion found the module.
	Marketplace   string
	SourcePackage string

	Provides      []capability.Capability
	Prerequisites []capability.Requirement

	// Placement metadata attached to the module itself, distinct from
	// recipe-book-declared placement which is looked up separately.
	TargetPackage *string
	TargetApps    []string

	RequiredFramework string
	RequiredAppTypes  []string

	Integrity string
}

type Manifest struct {
	schema.ManifestMeta `yaml:",inline"`
	Spec                *Spec `yaml:"spec"`
}

type Spec struct {
	ID            string                  `yaml:"id"`
	Version       string                  `yaml:"version"`
	Provides      []capability.Capability `yaml:"provides,omitempty"`
	Prerequisites Prerequisites           `yaml:"prerequisites,omitempty"`
	TargetPackage *string                 `yaml:"targetPackage,omitempty"`
	TargetApps    []string                `yaml:"targetApps,omitempty"`
}

type Prerequisites struct {
	Capabilities []capability.Requirement `yaml:"capabilities,omitempty"`
}

func ReadManifest(filePath string) (*Manifest, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ReadManifestContents(bytes)
}

func ReadManifestContents(contents []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(contents, &m, yaml.Strict()); err != nil {
		return nil, err
	}

	s := schema.ManifestMeta{
		APIVersion: ModuleAPIVersion,
		Kind:       ModuleKind,
	}
	if err := s.ValidateSchema(m.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModuleManifest, err.Error())
	}
	if m.Spec == nil || m.Spec.ID == "" {
		return nil, fmt.Errorf("%w: missing spec.id", ErrInvalidModuleManifest)
	}

	return &m, nil
}

// Integrity is a content address of the manifest's identity, letting a
// downstream consumer detect catalog drift independent of genome changes.
// JSON is used as the canonical form because encoding/json emits map keys
// in sorted order.
func (m *Manifest) Integrity() (string, error) {
	canonical, err := json.Marshal(m.Spec)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(canonical).String(), nil
}

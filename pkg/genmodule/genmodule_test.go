// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package genmodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw      string
		category Category
		layer    string
		name     string
		wantErr  bool
	}{
		{raw: "adapters/auth/better-auth", category: CategoryAdapter, layer: "auth", name: "better-auth"},
		{raw: "adapters/framework/nextjs", category: CategoryAdapter, layer: "framework", name: "nextjs"},
		{raw: "connectors/ai/openai", category: CategoryConnector, layer: "ai", name: "openai"},
		{raw: "frameworks/nextjs", category: CategoryFramework, name: "nextjs"},
		{raw: "custom/thing", category: CategoryUnknown, name: "thing"},
		{raw: "lonely", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, err := ParseID(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, id.Raw)
			assert.Equal(t, tt.category, id.Category)
			assert.Equal(t, tt.layer, id.Layer)
			assert.Equal(t, tt.name, id.Name)
		})
	}
}

func TestIsFramework(t *testing.T) {
	byLayer, err := ParseID("adapters/framework/nextjs")
	require.NoError(t, err)
	assert.True(t, byLayer.IsFramework())
	assert.Equal(t, "nextjs", byLayer.FrameworkName())

	byCategory, err := ParseID("frameworks/remix")
	require.NoError(t, err)
	assert.True(t, byCategory.IsFramework())

	plain, err := ParseID("adapters/auth/better-auth")
	require.NoError(t, err)
	assert.False(t, plain.IsFramework())
}

const validManifest = `
apiVersion: genforge.dev/v1
kind: Module
spec:
  id: adapters/auth/better-auth
  version: 1.2.0
  provides:
    - name: auth
      version: 1.2.0
  prerequisites:
    capabilities:
      - name: database
        version: ">=0.30.0"
`

func TestReadManifestContents(t *testing.T) {
	m, err := ReadManifestContents([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "adapters/auth/better-auth", m.Spec.ID)
	assert.Equal(t, "1.2.0", m.Spec.Version)
	require.Len(t, m.Spec.Provides, 1)
	assert.Equal(t, "auth", m.Spec.Provides[0].Name)
	require.Len(t, m.Spec.Prerequisites.Capabilities, 1)
	assert.Equal(t, ">=0.30.0", m.Spec.Prerequisites.Capabilities[0].Version)
}

func TestReadManifestContentsRejectsMissingID(t *testing.T) {
	contents := `
apiVersion: genforge.dev/v1
kind: Module
spec:
  version: 1.2.0
`
	_, err := ReadManifestContents([]byte(contents))
	require.ErrorIs(t, err, ErrInvalidModuleManifest)
}

func TestIntegrityIsStable(t *testing.T) {
	a, err := ReadManifestContents([]byte(validManifest))
	require.NoError(t, err)
	b, err := ReadManifestContents([]byte(validManifest))
	require.NoError(t, err)

	ai, err := a.Integrity()
	require.NoError(t, err)
	bi, err := b.Integrity()
	require.NoError(t, err)

	assert.Equal(t, ai, bi)
	assert.Regexp(t, "^sha256:[0-9a-f]{64}$", ai)
}

func TestIntegrityChangesWithSpec(t *testing.T) {
	m, err := ReadManifestContents([]byte(validManifest))
	require.NoError(t, err)
	before, err := m.Integrity()
	require.NoError(t, err)

	m.Spec.Version = "1.3.0"
	after, err := m.Integrity()
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

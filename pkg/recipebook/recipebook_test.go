// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package recipebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBook = `
apiVersion: genforge.dev/v1
kind: RecipeBook
version: "1.0.0"
packages:
  auth:
    defaultProvider: better-auth
    providers:
      better-auth:
        modules:
          - id: adapters/auth/better-auth
            version: 1.2.0
            targetPackage: auth
        dependencies:
          packages:
            - database
      clerk:
        modules:
          - id: adapters/auth/clerk
            version: 5.0.0
packageDirs:
  auth: packages/auth
`

func TestReadContents(t *testing.T) {
	b, err := ReadContents([]byte(validBook))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", b.Version)
	assert.Equal(t, "packages/auth", b.PackageDirs["auth"])

	recipe, ok := b.Package("auth")
	require.True(t, ok)
	assert.Equal(t, "better-auth", recipe.DefaultProvider)

	_, ok = b.Package("email")
	assert.False(t, ok)
}

func TestProviderFallsBackToDefault(t *testing.T) {
	b, err := ReadContents([]byte(validBook))
	require.NoError(t, err)
	recipe, _ := b.Package("auth")

	byName, ok := recipe.Provider("clerk")
	require.True(t, ok)
	assert.Equal(t, "adapters/auth/clerk", byName.Modules[0].ID)

	def, ok := recipe.Provider("")
	require.True(t, ok)
	assert.Equal(t, "adapters/auth/better-auth", def.Modules[0].ID)
	assert.Equal(t, []string{"database"}, def.Dependencies.Packages)

	_, ok = recipe.Provider("supabase")
	assert.False(t, ok)
}

func TestProviderNamesSorted(t *testing.T) {
	b, err := ReadContents([]byte(validBook))
	require.NoError(t, err)
	recipe, _ := b.Package("auth")

	assert.Equal(t, []string{"better-auth", "clerk"}, recipe.ProviderNames())
}

func TestReadContentsValidatesSchema(t *testing.T) {
	_, err := ReadContents([]byte("apiVersion: genforge.dev/v1\nkind: Genome\npackages: {}\n"))
	require.ErrorIs(t, err, ErrInvalidRecipeBook)
}

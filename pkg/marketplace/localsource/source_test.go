// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package localsource

import (
	"path/filepath"
	"testing"

	"genforge.dev/x/forge/pkg/marketplace"
	"genforge.dev/x/forge/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSource(t *testing.T) {
	source, err := New("official", testutil.TestdataPath(t, "marketplace"))
	require.NoError(t, err)
	ctx := testutil.Context(t)

	book, err := source.LoadRecipeBook(ctx)
	require.NoError(t, err)
	assert.Equal(t, "official", book.Marketplace)
	assert.Contains(t, book.Packages, "database")

	manifest, err := source.LoadModuleManifest(ctx, "adapters/database/drizzle")
	require.NoError(t, err)
	assert.Equal(t, "adapters/database/drizzle", manifest.Spec.ID)

	info := source.Describe()
	assert.Equal(t, marketplace.SourceTypeLocal, info.Type)
	assert.True(t, filepath.IsAbs(info.Source))
}

func TestLocalSourceMissingDirectory(t *testing.T) {
	_, err := New("official", testutil.TestdataPath(t, "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLocalSourceMissingModule(t *testing.T) {
	source, err := New("official", testutil.TestdataPath(t, "marketplace"))
	require.NoError(t, err)

	_, err = source.LoadModuleManifest(testutil.Context(t), "adapters/email/resend")
	require.Error(t, err)
}

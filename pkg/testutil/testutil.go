// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// TestdataPath gives absolute path within the common 'testdata'
func TestdataPath(t *testing.T, path ...string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	p := []string{filepath.Dir(file), "testdata"}
	p = append(p, path...)
	return filepath.Join(p...)
}

// CommonSetupSuite points FORGE_HOME at a randomized temp dir before every
// test, so tests never touch the user's real ~/.forge.
type CommonSetupSuite struct {
	suite.Suite
}

func (suite *CommonSetupSuite) SetupTest() {
	suite.T().Setenv(forgeconfig.ForgeHomeEnvVar, suite.T().TempDir())
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}

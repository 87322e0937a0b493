// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package forgeconfig

const (
	ForgeHomeEnvVar = "FORGE_HOME"
	LogLevelEnvVar  = "FORGE_LOG_LEVEL"
	GenomeEnvVar    = "FORGE_GENOME"
	AutoFetchEnvVar = "FORGE_AUTO_FETCH"
	NetrcPathEnvVar = "FORGE_NETRC"

	GenomeFilename   = "genome.yaml"
	LockFileName     = "forge-lock.yaml"
	ConfigFilename   = "forge-config.yaml"
	ForgeUserAgent   = "forge"
	ForgeHomeDirName = "forge"
)

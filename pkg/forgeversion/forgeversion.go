// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package forgeversion

// To be populated at build-time, e.g.:
// go build -ldflags "-X 'genforge.dev/x/forge/pkg/forgeversion.ForgeVersion=1.2.3'"
var (
	ForgeVersion string
	Build        string
	BuildDate    string
)

type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	BuildDate string `json:"buildDate"`
}

func defaultUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func Get() VersionInfo {
	return VersionInfo{
		Version:   defaultUnknown(ForgeVersion),
		Build:     defaultUnknown(Build),
		BuildDate: defaultUnknown(BuildDate),
	}
}

func GetForgeVersion() string {
	return defaultUnknown(ForgeVersion)
}

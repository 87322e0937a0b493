// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package forgeconfig

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"genforge.dev/x/forge/pkg/utils"
	"github.com/goccy/go-yaml"
)

type Config struct {
	ForgeHomePath string `yaml:"-"`

	CachePath string `yaml:"-"`
	// dir containing cloned git marketplaces, keyed by source fingerprint
	MarketplaceCachePath string `yaml:"-"`

	// AutoFetch controls whether remote marketplaces are refreshed on resolve.
	AutoFetch bool `yaml:"auto-fetch,omitempty"`

	// NetrcPath points at the netrc file used for remote marketplace
	// credentials. Defaults to ~/.netrc.
	NetrcPath string `yaml:"netrc-path,omitempty"`
}

func Get() (*Config, error) {
	forgeHomePath, err := getForgeHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomForgeHome(forgeHomePath)
}

func GetWithCustomForgeHome(forgeHomePath string) (*Config, error) {
	config := Config{}

	// forge-config.yaml is optional
	configFilePath := filepath.Join(forgeHomePath, ConfigFilename)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, err
		}
	}

	autoFetch, ok, err := utils.BoolEnvVar(AutoFetchEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.AutoFetch = autoFetch
	}

	if netrcPath, ok := os.LookupEnv(NetrcPathEnvVar); ok {
		config.NetrcPath = netrcPath
	}
	if config.NetrcPath == "" {
		usr, err := user.Current()
		if err == nil {
			config.NetrcPath = filepath.Join(usr.HomeDir, ".netrc")
		}
	}

	cacheDir := filepath.Join(forgeHomePath, "cache")
	config.ForgeHomePath = forgeHomePath
	config.CachePath = cacheDir
	config.MarketplaceCachePath = filepath.Join(cacheDir, "marketplaces")
	return &config, nil
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.ForgeHomePath, c.CachePath, c.MarketplaceCachePath)
}

func getForgeHomePath() (string, error) {
	if v, ok := os.LookupEnv(ForgeHomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory(ForgeHomeDirName)
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}

// GetGenomeAbsolutePath returns the genome.yaml governing the current
// invocation: FORGE_GENOME takes precedence, then an ancestor walk from the
// working directory.
func GetGenomeAbsolutePath() (string, bool, error) {
	genomePath, ok := os.LookupEnv(GenomeEnvVar)
	if ok {
		absolutePath, err := filepath.Abs(filepath.Join(genomePath, GenomeFilename))
		if err != nil {
			return "", false, err
		}
		return absolutePath, true, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, err
	}
	return findInAncestors(cwd, GenomeFilename)
}

func findInAncestors(startDir, filename string) (absolutePath string, ok bool, err error) {
	p, ok, err := doFindInAncestors(startDir, filename)
	if err != nil {
		return
	}
	if !ok {
		return "", false, nil
	}
	absolutePath, err = filepath.Abs(p)
	return
}

func doFindInAncestors(startDir, filename string) (string, bool, error) {
	f := filepath.Join(startDir, filename)

	info, err := os.Stat(f)
	if err == nil && !info.IsDir() {
		return f, true, nil
	}

	parent := filepath.Dir(startDir)
	if parent == startDir {
		return "", false, nil
	}

	return doFindInAncestors(parent, filename)
}

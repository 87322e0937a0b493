// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"genforge.dev/x/forge/cmd/forge/cmd/plan"
	"genforge.dev/x/forge/cmd/forge/cmd/resolve"
	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/forgeversion"
	"genforge.dev/x/forge/pkg/logging"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const ForgeName = "forge"

func RootCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           ForgeName,
		Short:         "declarative project generator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	config, err := forgeconfig.Get()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		resolve.Cmd(config),
		plan.Cmd(config),
	)

	version, err := yaml.Marshal(forgeversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(version)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

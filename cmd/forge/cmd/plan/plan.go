// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/plansummary"
	"genforge.dev/x/forge/pkg/resolver"
	"github.com/spf13/cobra"
)

func Cmd(config *forgeconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:  "plan",
		Long: "shows the resolved execution plan, resolving first when the lock file is missing or stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			genomePath, ok, err := forgeconfig.GetGenomeAbsolutePath()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no %s found in the current directory or any ancestor", forgeconfig.GenomeFilename)
			}

			g, err := genome.Read(genomePath)
			if err != nil {
				return err
			}

			result, err := resolver.New(config).Resolve(cmd.Context(), g, resolver.Options{})
			if err != nil {
				return err
			}

			plansummary.Print(cmd, g.Workspace.Name, result.Lock)
			return nil
		},
	}
}

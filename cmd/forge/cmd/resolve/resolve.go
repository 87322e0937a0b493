// Copyright (c) 2024-2026 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"log/slog"

	"genforge.dev/x/forge/pkg/forgeconfig"
	"genforge.dev/x/forge/pkg/genome"
	"genforge.dev/x/forge/pkg/resolver"
	"genforge.dev/x/forge/pkg/resolvererrors"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func Cmd(config *forgeconfig.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:  "resolve",
		Long: "resolves the genome into a lock file with a validated execution plan",
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

			result, err := resolver.New(config).Resolve(cmd.Context(), g, resolver.Options{Force: force})
			if err != nil {
				return printResolutionError(cmd, err)
			}

			for _, skip := range result.Skips {
				color.Yellow("skipped %s: %s", skip.ModuleID, skip.Reason)
			}

			if result.Reused {
				color.Green("✓ lock file is up to date (%d modules)", len(result.Lock.Modules))
				return nil
			}
			color.Green("✓ resolved %d modules", len(result.Lock.Modules))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "re-resolve even when the genome is unchanged")
	return cmd
}

// printResolutionError renders the standardized error as yaml so callers can
// consume code, modules and unmet requirements mechanically.
func printResolutionError(cmd *cobra.Command, err error) error {
	resErr := resolvererrors.Standardize(err)

	bytes, marshalErr := yaml.Marshal(resErr)
	if marshalErr != nil {
		slog.Error("failed to marshal resolution error", "error", marshalErr)
		return err
	}

	cmd.SilenceUsage = true
	cmd.PrintErrln(color.RedString("resolution failed:"))
	cmd.PrintErr(string(bytes))
	return resErr
}

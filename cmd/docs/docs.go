// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	forge "genforge.dev/x/forge/cmd/forge/cmd"
	"genforge.dev/x/forge/pkg/forgeconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	if err := getDocsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func getDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate forge CLI commands reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := genDocs(dir); err != nil {
				cmd.SilenceUsage = true
				return err
			}
			fmt.Printf("successfully generated at %s\n", dir)
			return nil
		},
	}
}

func genDocs(dir string) error {
	// generation must not pick up the developer's real forge home
	if err := os.Setenv(forgeconfig.ForgeHomeEnvVar, os.TempDir()); err != nil {
		return err
	}

	root, err := forge.RootCmd()
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, c := range root.Commands() {
		c.Hidden = false
	}

	return doc.GenMarkdownTreeCustom(root, dir, prependFrontMatter, func(s string) string {
		return s
	})
}

// add a Jekyll/Just-the-Docs front-matter block
func prependFrontMatter(filename string) string {
	base := filepath.Base(filename)
	cmdKey := strings.TrimSuffix(base, ".md")
	title := strings.Title(strings.ReplaceAll(cmdKey, "_", " "))
	return fmt.Sprintf(`---
layout: default
title: %s
parent: CLI reference
---

`, title)
}

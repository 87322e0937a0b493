// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	forge "genforge.dev/x/forge/cmd/forge/cmd"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	cmd, err := forge.RootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

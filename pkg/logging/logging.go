// Copyright (c) 2024-2025 GenForge Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"log/slog"
	"os"

	"genforge.dev/x/forge/pkg/forgeconfig"
)

func InitLogging() error {
	logLevel, ok := os.LookupEnv(forgeconfig.LogLevelEnvVar)
	if !ok {
		return initLogging("info")
	}
	return initLogging(logLevel)
}

func initLogging(logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}

	slogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}

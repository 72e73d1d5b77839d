// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the crun command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/matt-FFFFFF/crun/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
	}

	os.Exit(exitCode(ctx, err)) //nolint:gocritic
}

// exitCode maps the result of the root command to a process exit code.
// A cli.ExitCoder carries the dispatched command's own code.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := ec.Error(); msg != "" {
			ctxlog.Logger(ctx).Error("command execution failed", "error", msg)
		}

		return ec.ExitCode()
	}

	ctxlog.Logger(ctx).Error("command execution failed", "error", err)

	return 1
}

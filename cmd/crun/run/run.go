// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the default crun action: compose a command line from
// the arguments and dispatch it.
package run

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/matt-FFFFFF/crun/internal/dispatch"
	"github.com/matt-FFFFFF/crun/internal/shell"
	"github.com/urfave/cli/v3"
)

const (
	cliExitStr      = ""
	exitCodeFailure = 1
)

// Command joins the positional arguments of cmd with single spaces.
func Command(cmd *cli.Command) string {
	return strings.Join(cmd.Args().Slice(), " ")
}

// Action dispatches the command given as arguments and exits with its exit code.
func Action(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	command := Command(cmd)
	if command == "" {
		logger.Error("Please specify the command to run, e.g. `crun -- ls -l`.")
		return cli.Exit(cliExitStr, exitCodeFailure)
	}

	d, opts, err := Build(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeFailure)
	}

	res, err := Timed(ctx, cmd.Root().Writer, d, command, opts)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to run command: %s", err.Error()))
		return cli.Exit(cliExitStr, exitCodeFailure)
	}

	if res.ExitCode != 0 {
		return cli.Exit(cliExitStr, res.ExitCode)
	}

	return nil
}

// Timed dispatches command through d and writes the elapsed wall-clock time to w.
func Timed(
	ctx context.Context, w io.Writer, d *dispatch.Dispatcher, command string, opts shell.Options,
) (dispatch.Result, error) {
	start := time.Now()
	res, err := d.Dispatch(ctx, command, opts)
	fmt.Fprintf(w, "Elapsed time = %f seconds\n", time.Since(start).Seconds()) //nolint:errcheck

	return res, err
}

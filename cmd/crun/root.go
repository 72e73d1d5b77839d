// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/crun"
	"github.com/matt-FFFFFF/crun/cmd/crun/compose"
	"github.com/matt-FFFFFF/crun/cmd/crun/repl"
	"github.com/matt-FFFFFF/crun/cmd/crun/run"
	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	logFormatJSON = "json"
)

// newRootCmd returns the crun command tree. Exit codes are left to the caller.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			compose.ComposeCmd,
			repl.ShellCmd,
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "crun",
		Description: `crun runs a shell command locally, on a remote host over ssh, or through the
MOSIX batch schedulers (mosbatch, mosix_run.bash). Arguments are joined with
spaces to form the command. Use -- before a command that has flags of its own.`,
		Usage:     "crun [flags] -- <command> [args...]",
		Version:   fmt.Sprintf("%s (commit: %s)", crun.Version, crun.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Flags: append(run.Flags(),
			&cli.StringFlag{
				Name:    logLevelFlag,
				Usage:   "Log level: DEBUG, INFO, WARN or ERROR",
				Sources: cli.EnvVars("CRUN_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  logFormatFlag,
				Usage: "Log format: pretty or json",
				Value: "pretty",
			},
		),
		Before:                before,
		Action:                run.Action,
		ExitErrHandler:        func(context.Context, *cli.Command, error) {},
		EnableShellCompletion: true,
	}
}

func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet(logLevelFlag) {
		ctxlog.LevelVar.Set(ctxlog.LevelFromString(cmd.String(logLevelFlag)))
	}

	if cmd.String(logFormatFlag) == logFormatJSON {
		ctx = ctxlog.New(ctx, ctxlog.JSONLogger)
	}

	return ctx, nil
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repl implements the interactive crun prompt.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/crun/cmd/crun/run"
	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/matt-FFFFFF/crun/internal/dispatch"
	"github.com/matt-FFFFFF/crun/internal/shell"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
)

const prompt = "crun> "

// ShellCmd reads command lines interactively and dispatches each one.
var ShellCmd = &cli.Command{
	Name:  "shell",
	Usage: "Dispatch commands interactively",
	Description: `Start a prompt that dispatches every line through the same dispatcher,
configured by the usual flags and profile. Type exit or quit, or press Ctrl+C, to leave.`,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		d, opts, err := run.Build(ctx, cmd)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		w := cmd.Root().Writer
		s := &session{d: d, opts: opts, w: w}

		line := liner.NewLiner()
		defer func() {
			_ = line.Close()
		}()

		line.SetCtrlCAborts(true)
		fmt.Fprintln(w, "Entering interactive mode, type `quit` or `exit` or press Ctrl+C to leave.") //nolint:errcheck

		for {
			input, err := line.Prompt(prompt)

			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(w, "Aborted") //nolint:errcheck
				return nil
			case errors.Is(err, io.EOF):
				return nil
			case err != nil:
				return cli.Exit(fmt.Sprintf("error reading line: %s", err), 1)
			}

			if strings.TrimSpace(input) != "" {
				line.AppendHistory(input)
			}

			if s.handle(ctx, input) {
				return nil
			}
		}
	},
}

type session struct {
	d    *dispatch.Dispatcher
	opts shell.Options
	w    io.Writer
}

// handle dispatches one line of input and reports whether the session should end.
func (s *session) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)

	switch input {
	case "":
		return false
	case "exit", "quit":
		return true
	}

	if _, err := run.Timed(ctx, s.w, s.d, input, s.opts); err != nil {
		ctxlog.Error(ctx, "dispatch failed", "error", err)
	}

	return ctx.Err() != nil
}

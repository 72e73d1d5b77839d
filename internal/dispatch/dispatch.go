// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/matt-FFFFFF/crun/internal/shell"
)

// ErrNoResult is returned when the backend reports no result at all.
var ErrNoResult = errors.New("backend returned no result")

// Result is the captured outcome of the last executed dispatch.
type Result struct {
	StdOut   string
	StdErr   string
	ExitCode int
}

// Dispatch composes command, echoes it if asked, runs it through the backend when
// running is enabled and returns the captured output.
//
// With running disabled the backend is not called and the previous result is returned.
// The error is the backend's launch or IO failure; a non-zero exit code is not an error.
// The remote password is passed as opts.Credential unless the caller set one.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, opts shell.Options) (Result, error) {
	logger := ctxlog.Logger(ctx).With(
		"dispatchID", uuid.NewString(),
		"variant", d.variant.String(),
	)

	if d.sshEnabled && d.remoteHost == "" {
		logger.Warn("remote mode is on but no remote host is set, running locally")
	}

	line := d.Compose(command)
	logger.Debug("composed command line", "command", command, "line", line)

	if d.echoCommand {
		echo(d.out, line+"\n")
	}

	var err error

	if d.runEnabled {
		if opts.Credential == "" {
			opts.Credential = d.remotePassword
		}

		if prog := d.launcher(); prog != "" {
			if _, ok := shell.InPath(prog); !ok {
				logger.Warn("program not found in PATH", "program", prog)
			}
		}

		res := d.backend.Run(ctx, line, opts)
		if res == nil {
			res = &shell.Result{ExitCode: -1, Error: ErrNoResult}
		}

		d.lastStdOut = string(res.StdOut)
		d.lastStdErr = string(res.StdErr)
		d.lastExitCode = res.ExitCode
		err = res.Error

		logger.Debug("dispatch finished",
			"exitCode", res.ExitCode,
			"duration", res.Duration.String(),
			"error", err,
		)
	} else {
		logger.Debug("dry run, command not executed")
	}

	if d.echoStdOut {
		echo(d.out, d.lastStdOut)
	}

	if d.echoStdErr {
		echo(d.errOut, d.lastStdErr)
	}

	return d.Result(), err
}

// Result returns the last captured outcome.
func (d *Dispatcher) Result() Result {
	return Result{
		StdOut:   d.lastStdOut,
		StdErr:   d.lastStdErr,
		ExitCode: d.lastExitCode,
	}
}

// launcher returns the program the local shell starts the composed line with,
// or "" when that is the user command itself.
func (d *Dispatcher) launcher() string {
	if d.remote() {
		return sshCommand
	}

	return shell.FirstWord(d.scheduleCommand)
}

func echo(w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}

	fmt.Fprint(w, s) //nolint:errcheck
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/matt-FFFFFF/crun/internal/ctxlog"
)

const (
	// GOOSWindows is the runtime.GOOS value for Windows.
	GOOSWindows = "windows"
	// ShellEnv overrides the shell used to interpret command lines.
	ShellEnv = "CRUN_SHELL"
	// CredentialEnv is the child environment variable that carries Options.Credential.
	// It is the variable read by "sshpass -e".
	CredentialEnv = "SSHPASS"
	// DefaultDrainTimeout bounds how long output is read after the shell has exited.
	DefaultDrainTimeout = 250 * time.Millisecond

	maxBufferSize        = 8 * 1024 * 1024 // 8MB
	commandSwitchWindows = "/C"
	commandSwitchUnix    = "-c"
	winSystem32          = "System32"
	cmdExe               = "cmd.exe"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
)

var (
	// ErrBufferOverflow is returned when a stream exceeds the max size. The captured
	// output is truncated and the remainder discarded.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the shell could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when an output pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrTimeoutExceeded is returned when the context ends before the shell exits.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrSignalReceived is returned when a signal was relayed to the shell.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a repeated signal forced the shell to be killed.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// Options are the per-call execution options.
type Options struct {
	Env        map[string]string // Extra environment variables for the shell.
	Cwd        string            // Working directory, empty for the current one.
	Credential string            // Opaque credential, exported as CredentialEnv when set.
}

// Result is what the backend observed.
type Result struct {
	ExitCode int           // -1 when the shell did not exit normally.
	StdOut   []byte        // Captured standard output.
	StdErr   []byte        // Captured standard error.
	Duration time.Duration // Wall clock time from start to exit.
	Error    error         // Launch, IO, signal or context failure. A non-zero exit alone is not an error.
}

func defaultShell(ctx context.Context) string {
	if sh := os.Getenv(ShellEnv); sh != "" {
		ctxlog.Debug(ctx, "using shell from environment", "env", ShellEnv, "shell", sh)
		return sh
	}

	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	return binSh
}

func commandSwitch() string {
	if runtime.GOOS == GOOSWindows {
		return commandSwitchWindows
	}

	return commandSwitchUnix
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/crun/internal/ctxlog"
	"github.com/matt-FFFFFF/crun/internal/signalbroker"
	"golang.org/x/sync/errgroup"
)

// Runner runs command lines through the platform shell.
// The zero value is ready to use.
type Runner struct {
	Shell        string        // Shell executable. Empty uses CRUN_SHELL or the platform default.
	DrainTimeout time.Duration // Zero uses DefaultDrainTimeout.
	sigCh        chan os.Signal
}

// Run starts the shell with commandLine and blocks until it exits or ctx ends.
func (r *Runner) Run(ctx context.Context, commandLine string, opts Options) *Result {
	shellPath := r.Shell
	if shellPath == "" {
		shellPath = defaultShell(ctx)
	}

	logger := ctxlog.Logger(ctx).With("shell", shellPath)
	logger.Debug("shell run", "line", commandLine, "cwd", opts.Cwd)

	res := &Result{}

	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		env = append(env, k+"="+opts.Env[k])
	}

	if opts.Credential != "" {
		env = append(env, CredentialEnv+"="+opts.Credential)
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		res.ExitCode = -1

		return res
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)

		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		res.ExitCode = -1

		return res
	}

	args := []string{filepath.Base(shellPath), commandSwitch(), commandLine}

	ps, err := os.StartProcess(shellPath, args, &os.ProcAttr{
		Dir:   opts.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, wOut, wErr},
	})
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)

		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		res.ExitCode = -1

		return res
	}

	start := time.Now()

	logger.Debug("process started", "pid", ps.Pid)

	var stdout, stderr bytes.Buffer

	readers := new(errgroup.Group)
	readers.Go(func() error { return readAllUpToMax(ctx, rOut, &stdout, maxBufferSize) })
	readers.Go(func() error { return readAllUpToMax(ctx, rErr, &stderr, maxBufferSize) })

	sigCh := r.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})

	var (
		watchErr error
		watchWg  sync.WaitGroup
	)

	watchWg.Add(1)

	// watchdog relays signals to the shell and kills it when ctx ends.
	go func() {
		defer watchWg.Done()

		sigs := sigCh
		seen := make(map[os.Signal]struct{})

		for {
			select {
			case s, ok := <-sigs:
				if !ok {
					sigs = nil
					continue
				}

				if _, dup := seen[s]; dup {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					fmt.Fprintf(wErr, "received duplicate signal, killing process: %s\n", s.String()) //nolint:errcheck
					killPs(ctx, ps)

					watchErr = errors.Join(watchErr, ErrDuplicateSignalReceived)

					return
				}

				seen[s] = struct{}{}

				logger.Info("relaying signal", "signal", s.String())
				fmt.Fprintf(wErr, "received signal: %s\n", s.String()) //nolint:errcheck

				if err := ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

				watchErr = errors.Join(watchErr, ErrSignalReceived)

			case <-ctx.Done():
				logger.Info("context done, killing process")
				fmt.Fprintln(wErr, "context done, killing process") //nolint:errcheck
				killPs(ctx, ps)

				watchErr = errors.Join(watchErr, ErrTimeoutExceeded)

				return

			case <-done:
				return
			}
		}
	}()

	state, psErr := ps.Wait()
	res.Duration = time.Since(start)

	close(done)
	watchWg.Wait()

	closeAll(wOut, wErr)

	readErr := r.drain(ctx, readers, rOut, rErr)

	closeAll(rOut, rErr)

	res.ExitCode = state.ExitCode()
	res.StdOut = stdout.Bytes()
	res.StdErr = stderr.Bytes()
	res.Error = errors.Join(psErr, watchErr, readErr)

	if res.Error != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	logger.Debug("process finished",
		"exitCode", res.ExitCode,
		"duration", res.Duration.String(),
		"stdoutBytes", len(res.StdOut),
		"stderrBytes", len(res.StdErr),
	)

	return res
}

// drain waits for both readers. Pipes still held open by a backgrounded child
// are closed once the drain timeout passes.
func (r *Runner) drain(ctx context.Context, readers *errgroup.Group, pipes ...*os.File) error {
	timeout := r.DrainTimeout
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}

	readDone := make(chan error, 1)

	go func() {
		readDone <- readers.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-readDone:
		return err
	case <-timer.C:
		ctxlog.Debug(ctx, "output held open after shell exit, detaching", "timeout", timeout.String())
		closeAll(pipes...)

		return <-readDone
	}
}

// readAllUpToMax copies r into buf until EOF, keeping at most limit bytes.
// Anything beyond limit is read and discarded so the writer never blocks.
func readAllUpToMax(ctx context.Context, r io.Reader, buf *bytes.Buffer, limit int64) error {
	_, err := io.CopyN(buf, r, limit)

	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed):
		return nil
	default:
		return errors.Join(ErrFailedToReadBuffer, err)
	}

	extra, err := io.Copy(io.Discard, r)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Join(ErrFailedToReadBuffer, err)
	}

	if extra > 0 {
		ctxlog.Debug(ctx, "buffer overflow", "maxBytes", limit, "discardedBytes", extra)
		return ErrBufferOverflow
	}

	return nil
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

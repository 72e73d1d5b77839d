// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"io"
	"os"

	"github.com/matt-FFFFFF/crun/internal/shell"
)

var _ Backend = (*shell.Runner)(nil)

// Backend executes a composed command line and reports what happened.
// Run must return a non-nil result; Dispatch treats nil as a backend failure.
type Backend interface {
	Run(ctx context.Context, commandLine string, opts shell.Options) *shell.Result
}

// Config is the static configuration of a Dispatcher.
type Config struct {
	Variant        Variant // Scheduler variant, VariantDirect by default.
	RemoteHost     string  // ssh target. Setting it turns remote mode on.
	RemoteUser     string  // ssh login name.
	RemotePassword string  // Opaque credential handed to the backend.
	CommandPrefix  string  // Literal prefix of every composed line, e.g. environment setup.
	Priority       *int    // VariantPriority only. Nil means DefaultPriority.
	HostConstraint string  // VariantPriority only. Restricts scheduling to one host.
}

// Option configures the collaborators of a Dispatcher.
type Option func(d *Dispatcher)

// WithBackend replaces the default shell.Runner.
func WithBackend(b Backend) Option {
	return func(d *Dispatcher) {
		d.backend = b
	}
}

// WithWriter sets where the composed line and captured stdout are echoed. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithErrWriter sets where captured stderr is echoed. Defaults to os.Stderr.
func WithErrWriter(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.errOut = w
	}
}

// Dispatcher composes command lines and optionally runs them.
type Dispatcher struct {
	variant Variant

	runEnabled         bool
	sshEnabled         bool
	remoteHost         string
	remoteUser         string
	remotePassword     string
	singleQuoteCommand bool
	detach             bool
	echoCommand        bool
	echoStdOut         bool
	echoStdErr         bool
	discardOutput      bool
	scheduleCommand    string
	scheduleArgs       string
	commandPrefix      string

	priority       int
	hostConstraint string

	lastStdOut   string
	lastStdErr   string
	lastExitCode int

	backend Backend
	out     io.Writer
	errOut  io.Writer
}

// New creates a Dispatcher for cfg.Variant.
func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		variant:        cfg.Variant,
		runEnabled:     true,
		remoteUser:     cfg.RemoteUser,
		remotePassword: cfg.RemotePassword,
		commandPrefix:  cfg.CommandPrefix,
		priority:       DefaultPriority,
		hostConstraint: cfg.HostConstraint,
		backend:        &shell.Runner{},
		out:            os.Stdout,
		errOut:         os.Stderr,
	}

	if cfg.RemoteHost != "" {
		d.sshEnabled = true
		d.remoteHost = cfg.RemoteHost
	}

	if cfg.Priority != nil {
		d.priority = *cfg.Priority
	}

	switch cfg.Variant {
	case VariantPriority:
		d.scheduleCommand = PriorityScheduleCommand
		d.scheduleArgs = d.priorityScheduleArgs()
	case VariantScriptedBatch:
		d.scheduleCommand = ScriptedBatchCommand
		d.scheduleArgs = ScriptedBatchArgs
		d.singleQuoteCommand = true
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// NewPriority creates a VariantPriority Dispatcher.
func NewPriority(cfg Config, opts ...Option) *Dispatcher {
	cfg.Variant = VariantPriority
	return New(cfg, opts...)
}

// NewScriptedBatch creates a VariantScriptedBatch Dispatcher.
func NewScriptedBatch(cfg Config, opts ...Option) *Dispatcher {
	cfg.Variant = VariantScriptedBatch
	return New(cfg, opts...)
}

// Variant returns the scheduler variant fixed at construction.
func (d *Dispatcher) Variant() Variant { return d.variant }

// SchedulerActive reports whether commands are submitted through a scheduler.
func (d *Dispatcher) SchedulerActive() bool { return d.variant.Scheduled() }

// RunEnabled reports whether Dispatch executes the composed line.
func (d *Dispatcher) RunEnabled() bool { return d.runEnabled }

// SetRunEnabled turns execution on or off. Off is a dry run.
func (d *Dispatcher) SetRunEnabled(v bool) { d.runEnabled = v }

// SSHEnabled reports whether remote mode is on.
func (d *Dispatcher) SSHEnabled() bool { return d.sshEnabled }

// SetSSHEnabled turns remote mode on or off. It has no effect on composition
// while the remote host is empty.
func (d *Dispatcher) SetSSHEnabled(v bool) { d.sshEnabled = v }

// RemoteHost returns the ssh target host.
func (d *Dispatcher) RemoteHost() string { return d.remoteHost }

// RemoteUser returns the ssh login name.
func (d *Dispatcher) RemoteUser() string { return d.remoteUser }

// RemotePassword returns the stored credential.
func (d *Dispatcher) RemotePassword() string { return d.remotePassword }

// SetRemoteLogin enables remote mode and sets user, host and password in one step.
func (d *Dispatcher) SetRemoteLogin(user, host, password string) {
	d.sshEnabled = true
	d.remoteUser = user
	d.remoteHost = host
	d.remotePassword = password
}

// SingleQuoteCommand reports whether the user command is wrapped in single quotes.
func (d *Dispatcher) SingleQuoteCommand() bool { return d.singleQuoteCommand }

// SetSingleQuoteCommand sets whether the user command is wrapped in single quotes.
func (d *Dispatcher) SetSingleQuoteCommand(v bool) { d.singleQuoteCommand = v }

// Detach reports whether the composed line backgrounds its payload.
func (d *Dispatcher) Detach() bool { return d.detach }

// SetDetach sets whether the composed line backgrounds its payload.
func (d *Dispatcher) SetDetach(v bool) { d.detach = v }

// EchoCommand reports whether the composed line is echoed before execution.
func (d *Dispatcher) EchoCommand() bool { return d.echoCommand }

// SetEchoCommand sets whether the composed line is echoed before execution.
func (d *Dispatcher) SetEchoCommand(v bool) { d.echoCommand = v }

// EchoStdOut reports whether captured stdout is echoed.
func (d *Dispatcher) EchoStdOut() bool { return d.echoStdOut }

// SetEchoStdOut sets whether captured stdout is echoed.
func (d *Dispatcher) SetEchoStdOut(v bool) { d.echoStdOut = v }

// EchoStdErr reports whether captured stderr is echoed.
func (d *Dispatcher) EchoStdErr() bool { return d.echoStdErr }

// SetEchoStdErr sets whether captured stderr is echoed.
func (d *Dispatcher) SetEchoStdErr(v bool) { d.echoStdErr = v }

// DiscardOutput reports whether both streams are redirected to /dev/null.
func (d *Dispatcher) DiscardOutput() bool { return d.discardOutput }

// SetDiscardOutput sets whether both streams are redirected to /dev/null.
func (d *Dispatcher) SetDiscardOutput(v bool) { d.discardOutput = v }

// ScheduleCommand returns the scheduler submission command.
func (d *Dispatcher) ScheduleCommand() string { return d.scheduleCommand }

// SetScheduleCommand sets the scheduler submission command.
func (d *Dispatcher) SetScheduleCommand(s string) { d.scheduleCommand = s }

// ScheduleArgs returns the scheduler arguments. For VariantPriority this is the
// value produced by the last composition.
func (d *Dispatcher) ScheduleArgs() string { return d.scheduleArgs }

// SetScheduleArgs sets the scheduler arguments. VariantPriority regenerates them
// on every composition, so a value set here does not survive the next Compose.
func (d *Dispatcher) SetScheduleArgs(s string) { d.scheduleArgs = s }

// CommandPrefix returns the literal prefix of every composed line.
func (d *Dispatcher) CommandPrefix() string { return d.commandPrefix }

// SetCommandPrefix sets the literal prefix of every composed line.
func (d *Dispatcher) SetCommandPrefix(s string) { d.commandPrefix = s }

// Priority returns the mosbatch queue priority.
func (d *Dispatcher) Priority() int { return d.priority }

// SetPriority sets the mosbatch queue priority.
func (d *Dispatcher) SetPriority(p int) { d.priority = p }

// HostConstraint returns the host VariantPriority is restricted to, or "".
func (d *Dispatcher) HostConstraint() string { return d.hostConstraint }

// SetHostConstraint restricts VariantPriority to host. An empty host lifts the restriction.
func (d *Dispatcher) SetHostConstraint(host string) { d.hostConstraint = host }

// StdOut returns the stdout captured by the last executed dispatch.
func (d *Dispatcher) StdOut() string { return d.lastStdOut }

// StdErr returns the stderr captured by the last executed dispatch.
func (d *Dispatcher) StdErr() string { return d.lastStdErr }

// ExitCode returns the exit code of the last executed dispatch.
func (d *Dispatcher) ExitCode() int { return d.lastExitCode }

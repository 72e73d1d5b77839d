// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/crun/internal/dispatch"
	"github.com/matt-FFFFFF/crun/internal/profile"
	"github.com/matt-FFFFFF/crun/internal/shell"
	"github.com/urfave/cli/v3"
)

const (
	profileFlag        = "profile"
	remoteUserFlag     = "remote-user"
	remoteHostFlag     = "remote-host"
	remotePasswordFlag = "remote-password"
	prefixFlag         = "prefix"
	schedulerFlag      = "scheduler"
	priorityFlag       = "priority"
	hostOnlyFlag       = "host-only"
	noDetachFlag       = "no-detach"
	devNullFlag        = "devnull"
	dryRunFlag         = "dry-run"
	quietFlag          = "quiet"
	echoStdErrFlag     = "echo-stderr"
	cwdFlag            = "cwd"
	envFlag            = "env"
)

var (
	// ErrInvalidEnv is returned when an --env value is not KEY=VALUE.
	ErrInvalidEnv = errors.New("invalid environment entry, expected KEY=VALUE")
)

// Flags returns the flags describing a dispatcher. They are shared by the root
// command and its subcommands.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    profileFlag,
			Aliases: []string{"p"},
			Usage: "Load dispatcher settings from a YAML or HCL profile. " +
				"Supports Hashicorp's go-getter syntax for remote profiles.",
			TakesFile: true,
			Sources:   cli.EnvVars("CRUN_PROFILE"),
		},
		&cli.StringFlag{
			Name:    remoteUserFlag,
			Aliases: []string{"u"},
			Usage:   "Login name for the remote host",
			Sources: cli.EnvVars("CRUN_REMOTE_USER"),
		},
		&cli.StringFlag{
			Name:    remoteHostFlag,
			Aliases: []string{"H"},
			Usage:   "Run the command on this host over ssh",
			Sources: cli.EnvVars("CRUN_REMOTE_HOST"),
		},
		&cli.StringFlag{
			Name:    remotePasswordFlag,
			Usage:   "Credential exported to the shell as " + shell.CredentialEnv,
			Sources: cli.EnvVars("CRUN_REMOTE_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    prefixFlag,
			Usage:   "Literal text placed before every composed command, e.g. environment setup",
			Sources: cli.EnvVars("CRUN_PREFIX"),
		},
		&cli.StringFlag{
			Name:    schedulerFlag,
			Usage:   "Batch scheduler: none, mosix or mosixbash",
			Value:   dispatch.VariantDirect.String(),
			Sources: cli.EnvVars("CRUN_SCHEDULER"),
		},
		&cli.IntFlag{
			Name:    priorityFlag,
			Usage:   "mosbatch queue priority (mosix scheduler only)",
			Value:   dispatch.DefaultPriority,
			Sources: cli.EnvVars("CRUN_PRIORITY"),
		},
		&cli.StringFlag{
			Name:    hostOnlyFlag,
			Usage:   "Restrict mosbatch to this host (mosix scheduler only)",
			Sources: cli.EnvVars("CRUN_HOST_ONLY"),
		},
		&cli.BoolFlag{
			Name:    noDetachFlag,
			Usage:   "Wait for the command instead of running it in the background",
			Sources: cli.EnvVars("CRUN_NO_DETACH"),
		},
		&cli.BoolFlag{
			Name:    devNullFlag,
			Usage:   "Redirect the command's stdout and stderr to /dev/null",
			Sources: cli.EnvVars("CRUN_DEVNULL"),
		},
		&cli.BoolFlag{
			Name:    dryRunFlag,
			Aliases: []string{"n"},
			Usage:   "Compose and echo the command without running it",
			Sources: cli.EnvVars("CRUN_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:    quietFlag,
			Aliases: []string{"q"},
			Usage:   "Echo neither the composed command nor its stdout",
			Sources: cli.EnvVars("CRUN_QUIET"),
		},
		&cli.BoolFlag{
			Name:    echoStdErrFlag,
			Usage:   "Echo the command's stderr",
			Sources: cli.EnvVars("CRUN_ECHO_STDERR"),
		},
		&cli.StringFlag{
			Name:    cwdFlag,
			Usage:   "Working directory of the local shell",
			Sources: cli.EnvVars("CRUN_CWD"),
		},
		&cli.StringSliceFlag{
			Name:  envFlag,
			Usage: "Extra KEY=VALUE environment for the local shell. Specify multiple times for more.",
		},
	}
}

// Build assembles the dispatcher described by the profile and flags of cmd.
// Defaults are echo on, stdout echo on and detach on; a profile overrides the
// defaults and explicit flags override the profile.
func Build(ctx context.Context, cmd *cli.Command) (*dispatch.Dispatcher, shell.Options, error) {
	p := new(profile.Profile)

	if src := cmd.String(profileFlag); src != "" {
		loaded, err := profile.Load(ctx, src)
		if err != nil {
			return nil, shell.Options{}, err
		}

		p = loaded
	}

	overlayFlags(cmd, p)

	if err := p.Validate(); err != nil {
		return nil, shell.Options{}, err
	}

	env, err := parseEnv(cmd.StringSlice(envFlag))
	if err != nil {
		return nil, shell.Options{}, err
	}

	root := cmd.Root()
	d := dispatch.New(p.Config(),
		dispatch.WithWriter(root.Writer),
		dispatch.WithErrWriter(root.ErrWriter),
	)

	d.SetEchoCommand(true)
	d.SetEchoStdOut(true)
	d.SetDetach(true)
	p.Apply(d)

	return d, shell.Options{Env: env, Cwd: cmd.String(cwdFlag)}, nil
}

// overlayFlags copies every explicitly set flag onto p.
func overlayFlags(cmd *cli.Command, p *profile.Profile) {
	setString := func(name string, dst *string) {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	setString(remoteUserFlag, &p.RemoteUser)
	setString(remoteHostFlag, &p.RemoteHost)
	setString(remotePasswordFlag, &p.RemotePassword)
	setString(prefixFlag, &p.CommandPrefix)
	setString(schedulerFlag, &p.Scheduler)
	setString(hostOnlyFlag, &p.HostConstraint)

	if cmd.IsSet(priorityFlag) {
		v := cmd.Int(priorityFlag)
		p.Priority = &v
	}

	setBool := func(name string, dst **bool, invert bool) {
		if cmd.IsSet(name) {
			v := cmd.Bool(name) != invert
			*dst = &v
		}
	}

	setBool(noDetachFlag, &p.Detach, true)
	setBool(devNullFlag, &p.DiscardOutput, false)
	setBool(dryRunFlag, &p.DryRun, false)
	setBool(quietFlag, &p.Echo, true)
	setBool(quietFlag, &p.EchoStdOut, true)
	setBool(echoStdErrFlag, &p.EchoStdErr, false)
}

func parseEnv(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(entries))

	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, e)
		}

		env[k] = v
	}

	return env, nil
}

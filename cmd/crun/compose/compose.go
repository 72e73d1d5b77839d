// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compose

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/crun/cmd/crun/run"
	"github.com/urfave/cli/v3"
)

// ComposeCmd prints the command line crun would run, without running it.
var ComposeCmd = &cli.Command{
	Name:  "compose",
	Usage: "Print the composed command line without running it",
	Description: `Compose the command line from the arguments exactly as the default action would
and print it to stdout. Nothing is executed, so this is safe to use to inspect
ssh wrapping, scheduler prefixes and quoting.`,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		command := run.Command(cmd)
		if command == "" {
			return cli.Exit("no command given", 1)
		}

		d, _, err := run.Build(ctx, cmd)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintln(cmd.Root().Writer, d.Compose(command)) //nolint:errcheck

		return nil
	},
}

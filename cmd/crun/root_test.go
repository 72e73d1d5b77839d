// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/crun/internal/profile"
	"github.com/matt-FFFFFF/crun/internal/shell"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)

	root := newRootCmd()
	root.Writer = out
	root.ErrWriter = errOut

	err := root.Run(context.Background(), append([]string{"crun"}, args...))

	return out.String(), errOut.String(), err
}

func TestRoot_DryRunUsesDefaults(t *testing.T) {
	out, _, err := runRoot(t, "--dry-run", "--", "echo", "hi")

	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "echo hi  &", strings.TrimSpace(lines[0]), "echo and detach are on by default")
	assert.True(t, strings.HasPrefix(lines[1], "Elapsed time = "))
	assert.True(t, strings.HasSuffix(lines[1], " seconds"))
}

func TestRoot_NoCommand(t *testing.T) {
	_, _, err := runRoot(t, "--dry-run")

	var ec cli.ExitCoder

	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 1, ec.ExitCode())
}

func TestRoot_ExitCodePropagates(t *testing.T) {
	if runtime.GOOS == shell.GOOSWindows {
		t.Skip("needs a POSIX shell")
	}

	out, _, err := runRoot(t, "--no-detach", "--quiet", "--", "exit", "3")

	var ec cli.ExitCoder

	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 3, ec.ExitCode())
	assert.Equal(t, 3, exitCode(context.Background(), err))
	assert.True(t, strings.HasPrefix(out, "Elapsed time = "), "quiet suppresses the echoed command")
}

func TestRoot_RunsLocally(t *testing.T) {
	if runtime.GOOS == shell.GOOSWindows {
		t.Skip("needs a POSIX shell")
	}

	dir := t.TempDir()

	out, _, err := runRoot(t,
		"--no-detach",
		"--env", "GREETING=hello",
		"--cwd", dir,
		"--", "echo", "$GREETING", "&&", "pwd",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "  echo $GREETING && pwd  \n")
	assert.Contains(t, out, "hello\n")
	assert.Contains(t, out, dir)
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "ssh",
			args: []string{"-u", "alice", "-H", "node1", "--no-detach", "compose", "echo", "hi"},
			want: `ssh alice@node1 "  echo hi  "`,
		},
		{
			name: "priority scheduler",
			args: []string{"--scheduler", "mosix", "--no-detach", "compose", "myjob"},
			want: " mosbatch -q50 -b myjob  ",
		},
		{
			name: "explicit zero priority",
			args: []string{"--scheduler", "mosix", "--priority", "0", "--no-detach", "compose", "--", "myjob"},
			want: " mosbatch -q0 -b myjob  ",
		},
		{
			name: "priority with host and detach",
			args: []string{"--scheduler", "mosix", "--priority", "10", "--host-only", "n3", "compose", "myjob"},
			want: " mosbatch -q10 -rn3 myjob  & &",
		},
		{
			name: "scripted batch discarding output",
			args: []string{"--scheduler", "mosixbash", "--devnull", "--no-detach", "compose", "--", "myjob", "--flag"},
			want: " mosix_run.bash -c 'myjob --flag' >/dev/null 2>&1  ",
		},
		{
			name: "prefix",
			args: []string{"--prefix", "cd /work;", "--no-detach", "compose", "make"},
			want: "cd /work;  make  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runRoot(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestCompose_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "unknown scheduler", args: []string{"--scheduler", "slurm", "compose", "x"}, want: profile.ErrInvalidProfile},
		{name: "priority without mosix", args: []string{"--priority", "5", "compose", "x"}, want: profile.ErrInvalidProfile},
		{name: "bad env", args: []string{"--env", "NOEQUALS", "compose", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runRoot(t, tt.args...)

			var ec cli.ExitCoder

			require.ErrorAs(t, err, &ec)
			assert.Equal(t, 1, ec.ExitCode())

			if tt.want != nil {
				assert.Contains(t, err.Error(), tt.want.Error())
			}
		})
	}
}

func TestCompose_ProfileAndFlagOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/crun.yaml", []byte(`
scheduler: mosix
priority: 30
remote_host: head
remote_user: alice
detach: false
`), 0o644))

	stubs := gostub.Stub(&profile.FsFactory, func() afero.Fs {
		return fs
	})
	defer stubs.Reset()

	out, _, err := runRoot(t, "--profile", "/crun.yaml", "compose", "myjob")
	require.NoError(t, err)
	assert.Equal(t, `ssh alice@head " mosbatch -q30 -b myjob  "`+"\n", out)

	out, _, err = runRoot(t, "--profile", "/crun.yaml", "-u", "bob", "--priority", "5", "compose", "myjob")
	require.NoError(t, err)
	assert.Equal(t, `ssh bob@head " mosbatch -q5 -b myjob  "`+"\n", out)
}

func TestExitCode(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 0, exitCode(ctx, nil))
	assert.Equal(t, 1, exitCode(ctx, errors.New("boom")))
	assert.Equal(t, 7, exitCode(ctx, cli.Exit("", 7)))
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInPath(t *testing.T) {
	if runtime.GOOS == GOOSWindows {
		t.Skip("executable bits are not used on Windows")
	}

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mosbatch"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notexec"), []byte("data"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "adir"), 0o755))

	t.Setenv("PATH", dir)

	got, ok := InPath("mosbatch")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "mosbatch"), got)

	for _, name := range []string{"notexec", "adir", "missing", ""} {
		_, ok := InPath(name)
		assert.False(t, ok, name)
	}
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "ssh", FirstWord(`ssh alice@node1 "  ls  "`))
	assert.Equal(t, "mosbatch", FirstWord(" mosbatch -q50 -b job  "))
	assert.Empty(t, FirstWord("   "))
}

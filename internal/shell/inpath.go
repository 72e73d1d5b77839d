// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// InPath searches PATH for an executable called command and returns its full path.
func InPath(command string) (string, bool) {
	if command == "" {
		return "", false
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, command)

		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		if runtime.GOOS != GOOSWindows && info.Mode()&0o111 == 0 {
			continue
		}

		return candidate, true
	}

	return "", false
}

// FirstWord returns the program name a command line starts with.
func FirstWord(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

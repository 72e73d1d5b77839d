// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell is the execution backend: it hands a composed command line to the
// platform shell, captures both output streams and the exit status, and times the run.
//
// A command line that backgrounds its payload ("... &") returns once the shell itself
// exits. Output still held open by the background process is read for at most
// Runner.DrainTimeout and then abandoned.
package shell

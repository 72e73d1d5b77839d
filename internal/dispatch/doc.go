// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch composes shell command lines and hands them to an execution backend.
//
// A Dispatcher decides how a command reaches its target: directly on the local shell,
// wrapped in an ssh invocation for a remote host, or prefixed with a cluster batch
// submission command. The layout of the composed line is
//
//	<prefix> <scheduleCommand> <scheduleArgs>[ '<command>' | <command>] [>/dev/null 2>&1 ] [&]
//
// wrapped as
//
//	ssh <user>@<host> "<line>"
//
// when remote mode is on, with one more " &" appended when a scheduler variant detaches.
//
// Three variants exist. VariantDirect adds no scheduler prefix. VariantPriority submits
// through mosbatch with a priority and an optional host constraint. VariantScriptedBatch
// passes the quoted command to the mosix_run.bash wrapper script.
//
// Nothing is validated: an empty host, user or command produces whatever line the
// rules above produce, and the backend's output is returned as is.
//
// A Dispatcher is not safe for concurrent use.
package dispatch

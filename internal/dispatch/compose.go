// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DiscardSuffix redirects both output streams to the null device.
	DiscardSuffix = ">/dev/null 2>&1 "
	// DetachMarker backgrounds the preceding command.
	DetachMarker = "&"

	sshCommand = "ssh"
)

// Compose builds the full command line for command without running it.
// For VariantPriority it first regenerates the scheduler arguments.
func (d *Dispatcher) Compose(command string) string {
	if d.variant == VariantPriority {
		d.scheduleArgs = d.priorityScheduleArgs()
	}

	prefix := d.scheduleCommand + " " + d.scheduleArgs

	var line string
	if d.singleQuoteCommand {
		line = prefix + " '" + command + "'"
	} else {
		line = prefix + command
	}

	var suffix, marker string
	if d.discardOutput {
		suffix = DiscardSuffix
	}

	if d.detach {
		marker = DetachMarker
	}

	line = strings.Join([]string{d.commandPrefix, line, suffix, marker}, " ")

	if d.remote() {
		line = fmt.Sprintf(`%s %s@%s "%s"`, sshCommand, d.remoteUser, d.remoteHost, line)
	}

	// The scheduler submission and the shell call around it are backgrounded separately.
	if d.detach && d.SchedulerActive() {
		line += " " + DetachMarker
	}

	return line
}

func (d *Dispatcher) remote() bool {
	return d.sshEnabled && d.remoteHost != ""
}

// priorityScheduleArgs rebuilds the mosbatch arguments from scratch.
func (d *Dispatcher) priorityScheduleArgs() string {
	var sb strings.Builder

	sb.WriteString("-q")
	sb.WriteString(strconv.Itoa(d.priority))
	sb.WriteString(" ")

	if d.hostConstraint != "" {
		sb.WriteString("-r")
		sb.WriteString(d.hostConstraint)
		sb.WriteString(" ")
	} else {
		sb.WriteString("-b ")
	}

	return sb.String()
}

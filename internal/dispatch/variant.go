// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Variant selects how the scheduler prefix is produced.
type Variant int

const (
	// VariantDirect runs the command on the local shell, or over ssh when a remote host is set.
	VariantDirect Variant = iota
	// VariantPriority submits the command through mosbatch with a priority.
	VariantPriority
	// VariantScriptedBatch passes the quoted command to the mosix_run.bash wrapper.
	VariantScriptedBatch
)

const (
	// DefaultPriority is the mosbatch queue priority used when none is configured.
	DefaultPriority = 50
	// PriorityScheduleCommand is the submission command of VariantPriority.
	PriorityScheduleCommand = "mosbatch"
	// ScriptedBatchCommand is the wrapper script of VariantScriptedBatch.
	ScriptedBatchCommand = "mosix_run.bash"
	// ScriptedBatchArgs tells the wrapper script that the next argument is the command.
	ScriptedBatchArgs = "-c"
)

// ErrUnknownVariant is returned by ParseVariant for an unrecognised name.
var ErrUnknownVariant = errors.New("unknown scheduler")

var variantNames = map[Variant]string{
	VariantDirect:        "none",
	VariantPriority:      "mosix",
	VariantScriptedBatch: "mosixbash",
}

// String returns the scheduler name used on the command line and in profiles.
func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}

	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant maps a scheduler name to a Variant.
// The empty string and "direct" are accepted for VariantDirect.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "direct":
		return VariantDirect, nil
	case "mosix", "mosbatch", "priority":
		return VariantPriority, nil
	case "mosixbash", "mosix_run", "scripted":
		return VariantScriptedBatch, nil
	default:
		return VariantDirect, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Scheduled reports whether the variant submits through a scheduler.
func (v Variant) Scheduled() bool {
	return v == VariantPriority || v == VariantScriptedBatch
}

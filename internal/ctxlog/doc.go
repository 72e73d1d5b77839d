// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through PrettyHandler, a console handler that prints
// the time, level and message on one line followed by the record attributes as
// indented JSON. The level is read once from the CRUN_LOG_LEVEL environment
// variable (DEBUG, INFO, WARN or ERROR) and defaults to WARN.
package ctxlog

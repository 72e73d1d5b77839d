// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/crun/internal/ctxlog"
)

// Watch reads sigCh until it is closed or the same signal is seen twice.
// On the second signal of a kind it calls cancel and returns.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "received second signal, cancelling", "signal", sig.String())
			cancel()

			return
		}

		ctxlog.Info(ctx, "received signal, press again to force exit", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}

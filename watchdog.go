//
// Copyright 2018-2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"context"
	"os"
	"time"

	"github.com/juju/clock"
)

// watchdog cancels its context when Kick is not called for longer than
// timeout.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   clock.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, clk clock.Clock, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	wd := &watchdog{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
	if timeout > 0 {
		wd.timer = clk.AfterFunc(timeout, func() {
			cancel(os.ErrDeadlineExceeded)
		})
	}
	return ctx, wd
}

func (wd *watchdog) Kick() {
	if wd.timer != nil {
		wd.timer.Reset(wd.timeout)
	}
}

func (wd *watchdog) Cancel() {
	if wd.timer != nil {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}

// Err returns the reason the watchdog context ended, or nil if it is
// still alive.
func (wd *watchdog) Err() error {
	if wd.ctx.Err() == nil {
		return nil
	}
	return context.Cause(wd.ctx)
}

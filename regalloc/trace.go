// Copyright 2025 Richard Kelsey. All rights reserved.
// See file LICENSE for notices and license.

// Decision tracing, off unless REGALLOC_TRACE is set in the
// environment.  tlog loggers are nil-safe, so when tracing is off
// a trace point logs nothing; its arguments are still evaluated.

package regalloc

import (
	"github.com/nikandfor/tlog"
	"github.com/xyproto/env/v2"
)

type traceT = *tlog.Logger

func makeTrace() traceT {
	if env.Bool("REGALLOC_TRACE") {
		return tlog.DefaultLogger
	}
	return nil
}

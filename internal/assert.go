// Package internal contains helpers shared by the avdecodestats packages
// which are not a part of the public API.
package internal

import (
	"context"

	"github.com/xaionaro-go/avdecodestats/logger"
)

// Assert panics if the instrumentation is misused: these are programming
// errors at the call sites, not bad input data.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panic(ctx, "assertion failed", extraArgs)
}

package internal

import (
	"context"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avdecodestats/logger"
)

func TestAssert(t *testing.T) {
	ctx := logger.CtxWithLogger(context.Background(), logrus.Default().WithLevel(logger.LevelWarning))
	require.NotPanics(t, func() { Assert(ctx, true) })
	require.Panics(t, func() { Assert(ctx, false, "phase", 1) })
}

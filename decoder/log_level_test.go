package decoder

import (
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avdecodestats/logger"
)

func TestLevelAstiavRoundTrip(t *testing.T) {
	for _, level := range []logger.Level{logger.LevelPanic, logger.LevelFatal, logger.LevelError, logger.LevelWarning, logger.LevelInfo, logger.LevelTrace} {
		require.Equal(t, level, LevelFromAstiav(LevelToAstiav(level)), level.String())
	}
	// libav's "verbose" is between info and debug; it is reported as debug
	require.Equal(t, logger.LevelDebug, LevelFromAstiav(astiav.LogLevelVerbose))
	require.Equal(t, logger.LevelDebug, LevelFromAstiav(LevelToAstiav(logger.LevelDebug)))
}

package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/tournevent/shipping-connector/internal/telemetry"
)

func TestNewLogger_LevelParsing(t *testing.T) {
	logger, err := telemetry.NewLogger("shipping-connector", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = telemetry.NewLogger("shipping-connector", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	logger, err := telemetry.NewLogger("shipping-connector", "chatty")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

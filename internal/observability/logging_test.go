package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/tactics/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_NamedAndOptionsApplied(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"},
		zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	require.NoError(t, err)

	logger.Info("content loaded")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, LoggerName, logs.All()[0].LoggerName)
}

func TestForBattle_TagsEveryLine(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := ForBattle(zap.New(core).Named(LoggerName), "forest-ambush", "heroes", 42)

	logger.Info("battle deployed")
	logger.Debug("percent roll", zap.Int("roll", 7))

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, LoggerName+".battle", e.LoggerName)
		fields := e.ContextMap()
		assert.Equal(t, "forest-ambush", fields[KeyEncounter])
		assert.Equal(t, "heroes", fields[KeyParty])
		assert.Equal(t, int64(42), fields[KeySeed])
	}
}

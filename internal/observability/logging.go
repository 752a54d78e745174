// Package observability builds the structured logger shared by the tactics tools.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/tactics/internal/config"
)

// LoggerName is the root name every tool logger carries.
const LoggerName = "tactics"

// Field keys attached to battle-scoped loggers.
const (
	KeyEncounter = "encounter"
	KeyParty     = "party"
	KeySeed      = "seed"
)

// baseConfig returns the zap preset for format. Console output is for content
// authors running skirmishes by hand, so it is coloured and carries no stacktraces.
func baseConfig(format string) (zap.Config, error) {
	switch format {
	case "json":
		return zap.NewProductionConfig(), nil
	case "console":
		c := zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		c.DisableStacktrace = true
		return c, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}
}

// NewLogger creates the tool logger from cfg. Output goes to stderr so the
// combat log printed on stdout stays clean.
//
// Precondition: cfg.Level is one of "debug", "info", "warn", "error"; cfg.Format
// is "json" or "console".
// Postcondition: Returns a logger named LoggerName or a non-nil error.
func NewLogger(cfg config.LoggingConfig, opts ...zap.Option) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	zc, err := baseConfig(cfg.Format)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named(LoggerName), nil
}

// ForBattle returns a child logger named "battle" that tags every line with the
// encounter, the party, and the dice seed (0 for the cryptographic source).
func ForBattle(logger *zap.Logger, encounterID, partyID string, seed int64) *zap.Logger {
	return logger.Named("battle").With(
		zap.String(KeyEncounter, encounterID),
		zap.String(KeyParty, partyID),
		zap.Int64(KeySeed, seed),
	)
}

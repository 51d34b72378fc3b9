// Package logging builds the process logger. The TUI owns the terminal, so
// logs only ever go to a file.
package logging

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cropsight/internal/config"
)

// New returns a JSON file logger for cfg, or a no-op logger when no file is
// configured. debug forces the debug level.
func New(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "logging: parse log level")
	}
	if debug {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{cfg.File}
	zapCfg.ErrorOutputPaths = []string{cfg.File}
	zapCfg.DisableStacktrace = !debug

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrapf(err, "logging: open %s", cfg.File)
	}
	return logger.Named("cropsight"), nil
}

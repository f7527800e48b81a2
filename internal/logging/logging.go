// Package logging builds the zap logger used by the API client and the web
// view. The TUI owns the terminal, so logs only ever go to a file; with no
// file configured the logger is a no-op.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"doctrack-cli/internal/config"
)

func New(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{cfg.File}
	zapCfg.ErrorOutputPaths = []string{cfg.File}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	return zapCfg.Build()
}

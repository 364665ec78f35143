package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel reads LOG_LEVEL as a zap level name or number. Info is the default.
func LogLevel() zapcore.Level {
	v := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if n, err := strconv.Atoi(v); err == nil {
		return zapcore.Level(n)
	}
	if lvl, err := zapcore.ParseLevel(v); err == nil && v != "" {
		return lvl
	}
	return zapcore.InfoLevel
}

// NewLogger builds the production JSON logger and installs it as the zap
// global. The returned func restores the previous global and flushes.
func NewLogger() (*zap.Logger, func(), error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(LogLevel())
	zapCfg.EncoderConfig.CallerKey = "ln"
	zapCfg.EncoderConfig.FunctionKey = ""
	zapCfg.EncoderConfig.LevelKey = "severity"
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	undo := zap.ReplaceGlobals(logger)
	return logger, func() {
		undo()
		_ = logger.Sync()
	}, nil
}

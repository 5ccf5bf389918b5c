package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFile describes an optional rotating log file. An empty Path disables it.
type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type loggerOptions struct {
	consoleLevel *zapcore.Level
	consolePaths []string
}

// LoggerOption configures NewLogger.
type LoggerOption func(*loggerOptions)

// WithConsoleLevel raises the minimum level written to the console. The log file keeps its own level.
func WithConsoleLevel(l zapcore.Level) LoggerOption {
	return func(o *loggerOptions) { o.consoleLevel = &l }
}

func withConsolePaths(paths ...string) LoggerOption {
	return func(o *loggerOptions) { o.consolePaths = paths }
}

// NewLogger returns a zap logger. When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
// When file.Path is set, entries are also written as JSON to a rotating file.
func NewLogger(debug bool, file LogFile, opts ...LoggerOption) (*zap.Logger, error) {
	var o loggerOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if debug {
		cfg = zap.NewDevelopmentConfig()
		level = zapcore.DebugLevel
	}
	if len(o.consolePaths) > 0 {
		cfg.OutputPaths = o.consolePaths
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	core := logger.Core()
	if o.consoleLevel != nil && *o.consoleLevel > level {
		if core, err = zapcore.NewIncreaseLevelCore(core, *o.consoleLevel); err != nil {
			return nil, fmt.Errorf("console level: %w", err)
		}
	}
	if file.Path != "" {
		rotating := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   file.Path,
				MaxSize:    file.MaxSizeMB,
				MaxBackups: file.MaxBackups,
				MaxAge:     file.MaxAgeDays,
			}),
			level,
		)
		core = zapcore.NewTee(core, rotating)
	}
	return logger.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core })), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger options.
type Config struct {
	// Format is "text" (the default) or "json".
	Format string
	// Level is the minimum level: "debug", "info", "warn", or "error".
	Level string
	// Output receives log lines. Defaults to os.Stderr so stdout stays free
	// for command output.
	Output io.Writer
}

// DefaultConfig returns text logging at info level to stderr.
func DefaultConfig() Config {
	return Config{Format: "text", Level: "info", Output: os.Stderr}
}

// NewLogger builds a logger from cfg.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var out zapcore.WriteSyncer = os.Stderr
	if cfg.Output != nil {
		out = zapcore.AddSync(cfg.Output)
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "text", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(ec)
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return zap.New(zapcore.NewCore(encoder, out, level)), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Package logging builds the process logger. The TUI owns the terminal, so
// logs only ever go to a file, and only when debug logging is enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a no-op logger unless debug is set, in which case entries are
// appended as JSON lines to file.
func New(debug bool, file string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	if file == "" {
		return nil, fmt.Errorf("debug logging needs a log file")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{file}
	cfg.ErrorOutputPaths = []string{file}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("bfhlform"), nil
}

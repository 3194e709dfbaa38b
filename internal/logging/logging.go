// internal/logging/logging.go
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the toolkit logger writing to stderr. Quiet raises the level to
// warn; verbose lowers it to debug.
func New(quiet, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// NewWriter builds a console logger for an arbitrary sink; tests hand in a
// buffer, the apps hand in their stderr writer.
func NewWriter(w io.Writer, quiet, verbose bool) *zap.Logger {
	lvl := zapcore.InfoLevel
	switch {
	case quiet:
		lvl = zapcore.WarnLevel
	case verbose:
		lvl = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core)
}

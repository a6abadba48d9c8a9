// Package logger holds the process-wide structured logger.
//
// The logger is a no-op until Initialize is called, so library packages can
// log unconditionally.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels, counted from repeated -v flags.
const (
	VerbosityQuiet = 0 // warnings and errors
	VerbosityInfo  = 1 // -v: + files written, packages loaded
	VerbosityDebug = 2 // -vv: + per-declaration progress
)

var (
	// Logger is the global logger.
	Logger *zap.SugaredLogger
	// JSONOutput reports whether the logger writes JSON lines.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. Log lines go to stderr, so
// generated source written to stdout stays clean.
func Initialize(jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput

	level := VerbosityToLevel(verbosity)

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}

		l, err := config.Build()
		if err != nil {
			return err
		}

		Logger = l.Sugar()

		return nil
	}

	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.TimeKey = ""
	encoder.CallerKey = ""
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	Logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoder),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)).Sugar()

	return nil
}

// VerbosityToLevel maps a -v count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}

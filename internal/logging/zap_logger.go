package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// ZapLogger adapts a zap logger to httpsify.Logger, emitting one JSON object per line.
// Verbose maps to debug level, which is only enabled in verbose mode.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a JSON logger writing to out.
func NewZapLogger(out io.Writer, verbose bool) *ZapLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(level),
	)
	return NewZapLoggerFrom(zap.New(core))
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

// With returns a logger that adds the key/value pairs to every entry.
func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Verbose logs at debug level.
func (l *ZapLogger) Verbose(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs at info level.
func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Error logs at error level.
func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// WithRunID tags every entry of a structured logger with run_id.
// Line loggers are returned unchanged.
func WithRunID(logger httpsify.Logger, runID string) httpsify.Logger {
	if zl, ok := logger.(*ZapLogger); ok {
		return zl.With("run_id", runID)
	}
	return logger
}

// New returns the logger for format writing to out.
func New(format string, out io.Writer, verbose bool) (httpsify.Logger, error) {
	switch format {
	case "", httpsify.LogFormatConsole:
		return NewConsoleLoggerTo(out, verbose), nil
	case httpsify.LogFormatJSON:
		return NewZapLogger(out, verbose), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (want %s or %s)",
			httpsify.ErrInvalidConfig, format, httpsify.LogFormatConsole, httpsify.LogFormatJSON)
	}
}

var (
	_ httpsify.Logger = (*ConsoleLogger)(nil)
	_ httpsify.Logger = (*NullLogger)(nil)
	_ httpsify.Logger = (*ZapLogger)(nil)
)

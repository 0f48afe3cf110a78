package log

import (
	"context"
	"os"
)

var std = DevLogger(os.Stderr, InfoLevel, WithCaller(true), AddCallerSkip(1))

// these are bound to the default logger and replaced by ResetDefault
var (
	Debug = std.Debug
	Info  = std.Info
	Warn  = std.Warn
	Error = std.Error
	Fatal = std.Fatal
)

func Default() *Logger {
	return std
}

// ResetDefault replaces the default logger. Not safe for concurrent use.
func ResetDefault(l *Logger) {
	std = l
	Debug = std.Debug
	Info = std.Info
	Warn = std.Warn
	Error = std.Error
	Fatal = std.Fatal
}

func Sync() error {
	return std.Sync()
}

type ctxLoggerKey struct{}

func AddToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

// GetFromContext returns the logger stored in ctx or the default logger
func GetFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*Logger); ok {
		return l
	}
	return std
}

package logger

import (
	"log/slog"
	"os"
)

// Interface is the logger injected into use cases, repositories and handlers.
// The *w variants take alternating key/value pairs.
type Interface interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	With(args ...any) Interface
	Named(name string) Interface

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Fatalw(msg string, keysAndValues ...interface{})
}

// exit is replaced in tests.
var exit = os.Exit

// slogLogger adapts *slog.Logger. name is the dotted component path built by
// Named, e.g. "worker.cardgateway".
type slogLogger struct {
	base *slog.Logger
	name string
}

func NewLogger() Interface {
	return &slogLogger{base: Get()}
}

func NewLoggerWithSlog(slogLog *slog.Logger) Interface {
	return &slogLogger{base: slogLog}
}

func (l *slogLogger) target() *slog.Logger {
	if l.name == "" {
		return l.base
	}
	return l.base.With("component", l.name)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.target().Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.target().Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.target().Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.target().Error(msg, args...) }

// Fatal logs at error level and terminates the process.
func (l *slogLogger) Fatal(msg string, args ...any) {
	l.target().Error(msg, args...)
	exit(1)
}

func (l *slogLogger) With(args ...any) Interface {
	return &slogLogger{base: l.base.With(args...), name: l.name}
}

func (l *slogLogger) Named(name string) Interface {
	switch {
	case name == "":
		return l
	case l.name == "":
		return &slogLogger{base: l.base, name: name}
	default:
		return &slogLogger{base: l.base, name: l.name + "." + name}
	}
}

func (l *slogLogger) Debugw(msg string, keysAndValues ...interface{}) { l.Debug(msg, keysAndValues...) }
func (l *slogLogger) Infow(msg string, keysAndValues ...interface{})  { l.Info(msg, keysAndValues...) }
func (l *slogLogger) Warnw(msg string, keysAndValues ...interface{})  { l.Warn(msg, keysAndValues...) }
func (l *slogLogger) Errorw(msg string, keysAndValues ...interface{}) { l.Error(msg, keysAndValues...) }
func (l *slogLogger) Fatalw(msg string, keysAndValues ...interface{}) { l.Fatal(msg, keysAndValues...) }

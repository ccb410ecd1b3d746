// Package log is the structured logging backbone used throughout the
// interpreter and compiler: a slog.Logger-backed Logger interface with a
// process-wide Root() instance, in the shape the rest of this package
// (log_by_filter.go's TraceBy/DebugIf/... helpers) already assumes.
package log

import (
	"context"
	"os"

	"golang.org/x/exp/slog"
)

// LevelTrace is one level below slog.LevelDebug, mirroring go-ethereum's
// five-level scheme (Trace/Debug/Info/Warn/Error).
const LevelTrace = slog.Level(-8)

// Logger writes leveled, structured log lines. ctx is an alternating
// key/value list, exactly like slog's variadic logging methods.
type Logger interface {
	Write(level slog.Level, msg string, ctx ...interface{})

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})

	With(ctx ...interface{}) Logger
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// New creates a Logger around handler h.
func New(ctx ...interface{}) Logger {
	return &logger{inner: slog.New(NewTerminalHandler(os.Stderr)).With(ctx...)}
}

func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) Write(level slog.Level, msg string, ctx ...interface{}) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.Write(slog.LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.Write(slog.LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.Write(slog.LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.Write(slog.LevelError, msg, ctx...) }

func (l *logger) With(ctx ...interface{}) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

var root = New()

// Root returns the process-wide default Logger.
func Root() Logger { return root }

// SetDefault replaces the process-wide default Logger.
func SetDefault(l Logger) { root = l }

// Package-level convenience wrappers over Root().
func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }

// Package logger wraps log/slog behind a small leveled interface so packages
// can take a Logger dependency without caring about the handler.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging surface used across FormDrop.
type Logger interface {
	Debugf(format string, a ...any)
	Infof(format string, a ...any)
	Warnf(format string, a ...any)
	Errorf(format string, a ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger *slog.Logger
}

// New builds a Logger writing to stdout. The format is JSON when
// LOG_FORMAT=json and human-readable text otherwise.
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level, os.Getenv("LOG_FORMAT"))
}

// NewWithWriter builds a Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &slogLogger{logger: slog.New(handler)}
}

func (l *slogLogger) Debugf(format string, a ...any) {
	l.logger.Debug(fmt.Sprintf(format, a...))
}

func (l *slogLogger) Infof(format string, a ...any) {
	l.logger.Info(fmt.Sprintf(format, a...))
}

func (l *slogLogger) Warnf(format string, a ...any) {
	l.logger.Warn(fmt.Sprintf(format, a...))
}

func (l *slogLogger) Errorf(format string, a ...any) {
	l.logger.Error(fmt.Sprintf(format, a...))
}

// With returns a Logger that attaches args to every record.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

type noop struct{}

func (noop) Debugf(string, ...any) {}
func (noop) Infof(string, ...any)  {}
func (noop) Warnf(string, ...any)  {}
func (noop) Errorf(string, ...any) {}
func (noop) With(...any) Logger    { return noop{} }

// Nop discards everything. Handy in tests.
func Nop() Logger {
	return noop{}
}

// ParseLevel maps "debug", "info", "warn" and "error" (and their short forms)
// to slog levels. Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning", "wrn":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

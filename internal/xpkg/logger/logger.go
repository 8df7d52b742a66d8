// Package logger provides the structured JSON logger used by every service.
//
// Records look like
//
//	{"time":"...","level":"INFO","msg":"Order placed","hostname":"h1","service":"order-service","action":"checkout",...}
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is cheap to copy; every With/Action call returns a new value.
type Logger struct {
	base   *slog.Logger
	action string
}

// New returns a logger writing JSON to stdout at the given level
// (DEBUG, INFO, WARN, ERROR).
func New(level string) (Logger, error) {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string) (Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return Logger{}, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return Logger{base: slog.New(h).With("hostname", hostname)}, nil
}

// Nop discards everything. Used by tests.
func Nop() Logger {
	l, _ := NewWithWriter(io.Discard, "ERROR")
	return l
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", level)
	}
}

// Action names the step being logged. It replaces any previous action.
func (l Logger) Action(action string) Logger {
	l.action = action
	return l
}

func (l Logger) With(args ...any) Logger {
	l.base = l.logger().With(args...)
	return l
}

func (l Logger) WithGroup(name string) Logger {
	l.base = l.logger().WithGroup(name)
	return l
}

func (l Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l Logger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.log(slog.LevelError, msg, args...)
}

func (l Logger) log(level slog.Level, msg string, args ...any) {
	lg := l.logger()
	if !lg.Enabled(context.Background(), level) {
		return
	}
	if l.action != "" {
		args = append([]any{"action", l.action}, args...)
	}
	lg.Log(context.Background(), level, msg, args...)
}

// logger guards against the zero value.
func (l Logger) logger() *slog.Logger {
	if l.base == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l.base
}

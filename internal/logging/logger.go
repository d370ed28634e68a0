package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	level  Level
	logger *slog.Logger
	out    io.Writer
}

// NewLogger writes human-readable colored lines to stdout.
func NewLogger(levelStr string) *Logger {
	level := ParseLevel(levelStr)
	h := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: time.DateTime,
	})
	return &Logger{level: level, logger: slog.New(h), out: os.Stdout}
}

// NewLoggerWithWriter writes one JSON object per line to w.
func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	level := ParseLevel(levelStr)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return &Logger{level: level, logger: slog.New(h), out: w}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerWithWriter("error", io.Discard)
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{level: l.level, logger: l.logger.With("component", component), out: l.out}
}

func (l *Logger) Enabled(level Level) bool {
	return l.level <= level
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "fatal", true)
	os.Exit(1)
}

func (l *Logger) Infow(msg string, fields map[string]any) {
	l.logger.Info(msg, attrs(fields)...)
}

func (l *Logger) Warnw(msg string, fields map[string]any) {
	l.logger.Warn(msg, attrs(fields)...)
}

// Printf writes raw progress text, bypassing level filtering.
func (l *Logger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format, args...)
}

func attrs(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

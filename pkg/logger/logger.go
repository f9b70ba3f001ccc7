package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

type Logger struct {
	slogger *slog.Logger
}

var defaultLogger = newLogger(os.Stdout, slog.LevelInfo)

func newLogger(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	}

	handler := slog.NewTextHandler(w, opts)
	return &Logger{slogger: slog.New(handler)}
}

// InitLogger replaces the default logger. Unknown levels fall back to info.
func InitLogger(level string) {
	defaultLogger = newLogger(os.Stdout, ParseLevel(level))
}

// SetOutput redirects the default logger, keeping level.
func SetOutput(w io.Writer, level string) {
	defaultLogger = newLogger(w, ParseLevel(level))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
		// Format the source as "file:line"
		source := fmt.Sprintf("%s:%d", file, line)
		args = append(args, slog.String("source", source))
	}

	l.slogger.Log(context.Background(), level, msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.log(slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.log(slog.LevelInfo, msg, args...)
}

func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	defaultLogger.log(slog.LevelError, msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.log(slog.LevelWarn, msg, args...)
}

func Fatal(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	defaultLogger.log(slog.LevelError, msg, args...)
	os.Exit(1)
}

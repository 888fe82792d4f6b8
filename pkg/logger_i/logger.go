package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
)

type Logger struct {
	inner *slog.Logger
}

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init configures the default handler. Verbose enables debug output; the
// processing log file (see SetLogFile) receives the same stream.
func Init(verbose bool) {
	options := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if verbose {
		options.Level = slog.LevelDebug
	}

	mu.Lock()
	defer mu.Unlock()

	var out io.Writer = os.Stdout
	if logFile != nil {
		out = io.MultiWriter(os.Stdout, logFile)
	}

	handler := slog.NewTextHandler(out, options)
	slog.SetDefault(slog.New(handler))
}

// SetLogFile tees all log output into the case's processing log. Call before
// Init; on failure console-only logging stays in place.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	logFile = f
	mu.Unlock()
	return nil
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// Skip 3 levels: runtime.Callers, logWithSource, and the wrapper method
	runtime.Callers(3, pcs[:])
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// Package logger holds the process-wide structured logger. Every package
// logs through it so output stays machine-readable JSON on stdout.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init builds the shared logger once. Setting DEBUG in the environment
// lowers the level to debug; the config layer binds the same variable.
func Init() {
	once.Do(func() {
		level := slog.LevelInfo
		if os.Getenv("DEBUG") != "" {
			level = slog.LevelDebug
		}
		defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(defaultLogger)
	})
}

// Get returns the shared logger, initializing it on first use.
func Get() *slog.Logger {
	Init()
	return defaultLogger
}

// Info logs at info level through the shared logger.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs at warn level through the shared logger.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at error level, attaching err under the "error" key when
// it is non-nil.
func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	Get().Error(msg, args...)
}

// Debug logs at debug level through the shared logger.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

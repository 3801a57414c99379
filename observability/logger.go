package observability

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

var (
	globalLogger *slog.Logger
	loggerMu     sync.RWMutex
)

// InitLogger initializes the global logger with the appropriate handler
// For production, use JSON format; for development, use text format
func InitLogger(production bool) {
	InitLoggerWithLevel(production, slog.LevelInfo)
}

// InitLoggerWithLevel initializes the logger with a specific log level
func InitLoggerWithLevel(production bool, level slog.Level) {
	l := newLogger(production, level)
	SetLogger(l)
	slog.SetDefault(l)
}

func newLogger(production bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// SetLogger replaces the global logger. nil falls back to the development
// logger on next use.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = l
}

// GetLogger returns the global logger, creating a development logger on
// first use
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	l := globalLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = newLogger(false, slog.LevelInfo)
	}
	return globalLogger
}

func logger() *slog.Logger {
	return GetLogger()
}

// WithContext returns a logger carrying the request id set by chi's RequestID middleware
func WithContext(ctx context.Context) *slog.Logger {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return logger().With("request_id", reqID)
	}
	return logger()
}

// Info logs an info message
func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// Fatal logs an error message and exits
func Fatal(msg string, args ...any) {
	logger().Error(msg, args...)
	os.Exit(1)
}

// WithDomain returns a logger with the pipeline domain field (ipos, stocks)
func WithDomain(domain string) *slog.Logger {
	return logger().With("domain", domain)
}

// WithError returns a logger with error field
func WithError(err error) *slog.Logger {
	return logger().With("error", err)
}

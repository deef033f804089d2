// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries. Run-scoped attributes such as
// the run id can be attached to a context with ContextWithAttrs, so every
// logger built from that context carries them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type attrsKey struct{}

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. The CLI uses it to keep stdout free for
// results.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
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

// ContextWithAttrs returns a context whose loggers carry args in addition
// to any attributes already attached.
func ContextWithAttrs(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// FromContext returns a logger enriched with request context.
//
// When the context contains a chi RequestID the logger includes request_id,
// followed by any attributes added with ContextWithAttrs.
//
// Usage:
//
//	func handleProcess(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("processing file", "file", name)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if attrs, ok := ctx.Value(attrsKey{}).([]any); ok && len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	runLogger := logging.WithFields(ctx, "file", name, "chunk_size", n)
//	runLogger.Info("run started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

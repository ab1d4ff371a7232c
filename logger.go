package edgestream

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with edgestream-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithShard tags the logger with a shard index.
func (l *Logger) WithShard(shard int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shard),
	}
}

// LogSourceOpen logs an attempt to open a source.
func (l *Logger) LogSourceOpen(ctx context.Context, index int, locator string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "source open failed",
			"index", index,
			"locator", locator,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "source opened",
			"index", index,
			"locator", locator,
		)
	}
}

// LogSourceDone logs a drained (or abandoned) source.
func (l *Logger) LogSourceDone(ctx context.Context, locator string, nodes uint64, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "source read failed",
			"locator", locator,
			"nodes", nodes,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "source drained",
			"locator", locator,
			"nodes", nodes,
			"bytes", bytes,
		)
	}
}

// LogSelfLoop logs a self-loop kept under SelfLoopWarn.
func (l *Logger) LogSelfLoop(ctx context.Context, locator string, node uint32) {
	l.WarnContext(ctx, "self-loop in graph stream",
		"locator", locator,
		"node", node,
	)
}

// LogRead logs a completed read operation.
func (l *Logger) LogRead(ctx context.Context, sources int, nodes uint64, edges int, maxNodeID uint32, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph read failed",
			"sources", sources,
			"nodes", nodes,
			"edges", edges,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph read completed",
			"sources", sources,
			"nodes", nodes,
			"edges", edges,
			"max_node_id", maxNodeID,
			"duration", d,
		)
	}
}

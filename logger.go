package doublets

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with link-store specific context.
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

// WithID adds an id field to the logger.
func (l *Logger) WithID(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// WithStore tags every record with a store name.
func (l *Logger) WithStore(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", name),
	}
}

// LogCreate logs a create operation.
func (l *Logger) LogCreate(ctx context.Context, id uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "create completed",
			"id", id,
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, id, source, target uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"id", id,
			"source", source,
			"target", target,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"id", id,
			"source", source,
			"target", target,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, id uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"id", id,
		)
	}
}

// LogEach logs the end of an iteration. Visitor errors are expected traffic
// and logged at Debug; only engine failures are errors.
func (l *Logger) LogEach(ctx context.Context, visited int, ctrl Control, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "each completed",
			"visited", visited,
			"control", ctrl.String(),
		)
	case isEngineError(err):
		l.ErrorContext(ctx, "each failed",
			"visited", visited,
			"error", err,
		)
	default:
		l.DebugContext(ctx, "each stopped by visitor",
			"visited", visited,
			"error", err,
		)
	}
}

// LogGrow logs growth of the slot table.
func (l *Logger) LogGrow(ctx context.Context, oldBytes, newBytes int) {
	l.InfoContext(ctx, "slot table grown",
		"old_bytes", oldBytes,
		"new_bytes", newBytes,
	)
}

// LogImage logs an image export or import.
func (l *Logger) LogImage(ctx context.Context, op string, links uint64, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "image "+op+" failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "image "+op+" completed",
			"links", links,
			"bytes", bytes,
		)
	}
}

// LogVerify logs an integrity check.
func (l *Logger) LogVerify(ctx context.Context, live uint64, dangling int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "verify failed",
			"error", err,
		)
	case dangling > 0:
		l.WarnContext(ctx, "verify found dangling references",
			"live", live,
			"dangling", dangling,
		)
	default:
		l.DebugContext(ctx, "verify completed",
			"live", live,
		)
	}
}

package logger

import (
	"log/slog"
	"time"
)

// LogCommand logs command execution
func LogCommand(name string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Command failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Command executed", attrs...)
	}
}

// LogStore logs a persistence operation against the EXP store
func LogStore(operation string, duration time.Duration, err error, attrs ...any) {
	base := []any{
		slog.String("type", "db"),
		slog.String("operation", operation),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Store operation failed", append(append(base, slog.Any("error", err)), attrs...)...)
		return
	}
	slog.Debug("Store operation completed", append(base, attrs...)...)
}

// LogExp records an EXP audit event (the moderation log of grants, takes and resets)
func LogExp(action string, attrs ...any) {
	base := []any{
		slog.String("type", "exp"),
		slog.String("action", action),
	}
	slog.Info("EXP "+action, append(base, attrs...)...)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogWarn logs recoverable problems
func LogWarn(msg string, err error, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	if err != nil {
		baseAttrs = append(baseAttrs, slog.Any("error", err))
	}
	slog.Warn(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

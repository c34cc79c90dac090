package logger

import (
	"log/slog"
	"time"
)

// LogCommand logs slash command execution
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

// LogEvent logs a bus event apply
func LogEvent(eventType string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "bus"),
		slog.String("event", eventType),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Event apply failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Event applied", attrs...)
	}
}

// LogSheet logs spreadsheet operations
func LogSheet(op string, rng string, err error) {
	attrs := []any{
		slog.String("type", "sheet"),
		slog.String("op", op),
		slog.String("range", rng),
	}

	if err != nil {
		slog.Error("Sheet call failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Debug("Sheet call ok", attrs...)
	}
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

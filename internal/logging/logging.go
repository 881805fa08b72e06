// Package logging wires up the process-wide structured logger.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// New builds a slog.Logger writing JSON to stderr at the given level
// ("debug", "info", "warn", "error"; anything else falls back to info).
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Wrap annotates err with a stack trace via go-xerrors so that a
// logged Error call carries a frame, not just a flat message. Returns
// nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return xerrors.New(err)
}

// LogError logs err (wrapped for stack context) at error level along
// with the given message and key/value attributes.
func LogError(ctx context.Context, log *slog.Logger, msg string, err error, args ...any) {
	wrapped := Wrap(err)
	allArgs := append([]any{slog.Any("error", wrapped)}, args...)
	log.ErrorContext(ctx, msg, allArgs...)
}

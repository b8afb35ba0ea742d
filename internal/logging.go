// Package internal holds process-level plumbing shared by the binaries.
package internal

import (
	"log/slog"
	"os"
	"strings"
)

// GetLoggerFromString builds the process logger at the configured
// level. Unknown levels fall back to info.
func GetLoggerFromString(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

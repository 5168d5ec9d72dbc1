package bootstrap

import (
	"io"
	"log/slog"

	"github.com/abgdnv/shopmanager/pkg/logger"
)

// NewLogger creates a new slog.Logger instance writing JSON to w with the specified log level.
// Records are decorated with the session id carried by the context, see logger.WithSessionID.
func NewLogger(level string, w io.Writer) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(w, loggerOpts)
	return slog.New(logger.NewContextHandler(logHandler))
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

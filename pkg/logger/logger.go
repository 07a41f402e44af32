package logger

import (
	"io"
	"log/slog"
)

// Init initializes the global slog logger.
//
// The pipeline's process contract is line-oriented: the supervisor reads
// stdout line by line and matches milestone phrases, so a text handler is
// used rather than JSON.
func Init(writer io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Level maps a configuration string to a slog level. Unknown values fall
// back to info.
func Level(s string) slog.Level {
	switch s {
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

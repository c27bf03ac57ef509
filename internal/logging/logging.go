package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init configures the default slog logger. The TUI owns stdout, so logs go
// to stderr (or LOG_FILE when set) and stay at error level unless LOG_LEVEL
// lowers the threshold.
func Init() {
	out := io.Writer(os.Stderr)
	if path, ok := os.LookupEnv("LOG_FILE"); ok && path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}

	logger := slog.New(
		slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: levelFromEnv(),
		}),
	)
	slog.SetDefault(logger)
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

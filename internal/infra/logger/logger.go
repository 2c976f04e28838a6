package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the JSON logger used by both binaries: debug level in dev,
// info otherwise.
func New(env string) *slog.Logger {
	return NewWithWriter(os.Stdout, env)
}

func NewWithWriter(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "subpass", "env", env)
}

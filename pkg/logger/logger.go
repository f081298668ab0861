package logger

import (
	"log/slog"
	"os"
)

// Log is the process-wide structured logger. It defaults to a plain text
// handler so early startup and tests can log before Init runs.
var Log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init swaps in the production JSON handler. Called once from main after
// config is loaded.
func Init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

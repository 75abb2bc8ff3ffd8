package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON logger on stdout tagged with app and env. Debug level
// also records the source location of each call.
func New(app, env string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})

	log := slog.New(h).With(
		slog.String("app", app),
		slog.String("env", env),
	)
	slog.SetDefault(log)
	return log
}

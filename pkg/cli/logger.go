package cli

import (
	"fmt"
	"io"
	"log/slog"
)

func prepareLogger(level string, w io.Writer) (*slog.Logger, error) {
	opts := slog.HandlerOptions{}
	switch level {
	case "ERROR":
		opts.Level = slog.LevelError
	case "WARNING", "WARN":
		opts.Level = slog.LevelWarn
	case "INFO":
		opts.Level = slog.LevelInfo
	case "DEBUG":
		opts.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown log level %s", level)
	}
	logger := slog.New(slog.NewJSONHandler(w, &opts))
	slog.SetDefault(logger)
	return logger, nil
}

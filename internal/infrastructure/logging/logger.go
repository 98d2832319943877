package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/config"
)

// Logger wraps slog.Logger with level-based filtering and default fields.
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging configuration: output destination,
// level filtering and format (text for development, JSON for production).
func New(cfg config.LoggingConfig) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "here-travel-time"),
	})

	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With returns a new Logger with additional default attributes, e.g.
// logger.With("component", "here").
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// parseLevel converts a string log level to slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

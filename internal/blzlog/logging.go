// Package blzlog wires up structured logging for the engine: a rotating
// file writer feeding a slog.Logger, with an opt-in mirror to stderr for
// interactive use.
package blzlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how Setup builds a logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string
	// FilePath is the rotating log file path. Empty disables file logging.
	FilePath string
	// MaxSizeMB is the size threshold before rotation (default 10).
	MaxSizeMB int
	// MaxFiles is the number of rotated generations kept (default 5).
	MaxFiles int
	// WriteToStderr additionally mirrors output to stderr.
	WriteToStderr bool
}

// DefaultConfig returns the engine's standard file-logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}
}

// DebugConfig returns DefaultConfig with debug-level logging and a stderr
// mirror, for interactive troubleshooting.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = true
	return cfg
}

// Setup builds a slog.Logger per cfg and returns a cleanup function that
// flushes and closes the underlying file. Callers that don't want file
// logging should leave cfg.FilePath empty, in which case Setup logs to
// stderr only.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)

	if cfg.FilePath == "" {
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		return slog.New(handler), func() {}, nil
	}

	if err := EnsureLogDir(); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return logger, cleanup, nil
}

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

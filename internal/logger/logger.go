// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	envDebug  = "FWPROBE_DEBUG"
	envStderr = "FWPROBE_LOG_STDERR"
	envFile   = "FWPROBE_LOG_FILE"
	envFormat = "FWPROBE_LOG_FORMAT"
)

var logFile *os.File

// Init installs the default slog logger. Logs go to a file under the user
// config dir so they do not mix with query output, unless
// FWPROBE_LOG_STDERR=1 or the file cannot be opened. Calling Init again
// replaces the previous logger and closes its file.
func Init(levelOverride string) error {
	level := slog.LevelWarn
	if os.Getenv(envDebug) == "1" {
		level = slog.LevelDebug
	}
	if levelOverride != "" {
		parsed, err := ParseLevel(levelOverride)
		if err != nil {
			return err
		}
		level = parsed
	}

	_ = Close()
	slog.SetDefault(New(output(), os.Getenv(envFormat), level))
	return nil
}

// New builds a logger writing to w. format "json" selects the JSON
// handler, anything else the text handler.
func New(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("invalid log level: %q (use debug|info|warn|error)", value)
}

func output() io.Writer {
	if os.Getenv(envStderr) == "1" {
		return os.Stderr
	}
	path := logPath()
	if path == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return os.Stderr
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stderr
	}
	logFile = file
	return file
}

func logPath() string {
	if path := os.Getenv(envFile); path != "" {
		return path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "fwprobe", "fwprobe.log")
}

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// logFileLayout names log files after the start of the run.
const logFileLayout = "2006-01-02_150405"

// NewLogger returns a sanitizing logger writing text to console and, when
// file is non-nil, JSON lines to file as well. Info and above are shown by
// default; verbose lowers the level to Debug.
func NewLogger(console, file io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}

	var handler slog.Handler = slog.NewTextHandler(console, opts)
	if file != nil {
		handler = NewFanoutHandler(handler, slog.NewJSONHandler(file, opts))
	}
	return slog.New(NewSecureHandler(handler))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// OpenLogFile creates dir if needed and opens "<dir>/YYYY-MM-DD_HHMMSS.log"
// for appending, named after now.
func OpenLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, now.Format(logFileLayout)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path is built from a configured directory
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
